// Package state persists refresh bookkeeping (last update time, ETag) as
// string values addressed by section and key.
//
// Three backends are provided:
//   - FileStore: a TOML file guarded by an advisory file lock, safe to share
//     between processes
//   - LevelDBStore: a LevelDB directory, for hosts that already keep state there
//   - MemoryStore: an in-process map, mostly for tests
//
// Open selects a backend by name:
//
//	store, err := state.Open(state.BackendFile, "/opt/var/keen-threatfeed/feed.state")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	etag, ok := store.Get("threat_intelligence", "etag")
package state
