// Package feed keeps a local copy of a remote threat-intelligence blocklist
// up to date.
//
// A Coordinator runs refresh cycles. Each cycle:
//
//  1. coerces the update period; a missing, non-numeric or non-positive
//     period disables updating
//  2. skips the cycle if the last recorded update is newer than the period
//  3. checks connectivity against a well-known probe host
//  4. reads the feed's ETag with a HEAD request and compares it to the stored one
//  5. downloads the feed only if the ETag changed or none was stored
//  6. stores the new ETag and update time
//
// Every cycle ends with exactly one message to the MessageSink and a definite
// Outcome. Errors never escape Refresh.
//
//	remote := feed.NewHTTPRemote(feed.HTTPRemoteConfig{
//	    FeedURL:    cfg.Feed.URL,
//	    ProbeURL:   cfg.Feed.ProbeURL,
//	    OutputPath: cfg.GetAbsOutputFile(),
//	})
//	coordinator := feed.NewCoordinator(store, sink.Log{}, remote)
//	outcome := coordinator.Refresh(ctx, cfg.Feed.UpdatePeriod)
//
// A download that fails after the ETag was read still records that ETag, so
// the next cycle sees the feed as unchanged and does not retry the download
// until the remote ETag changes again.
package feed
