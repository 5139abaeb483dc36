// Package log provides leveled console logging for keen-threatfeed.
//
// Four levels are supported: DEBUG, INFO, WARN and ERROR. Debug output is
// hidden unless verbose mode is enabled with SetVerbose. Errors go to stderr,
// everything else to stdout unless SetForceStdErr is used.
//
//	log.Infof("Refreshing feed %q", name)
//	log.SetVerbose(true)
//	log.Debugf("ETag response: %s", etag)
//
// All functions are safe for concurrent use.
package log
