// Package api provides the HTTP API served by keen-threatfeed in service mode.
//
// The API exposes the refresh state of the feed and lets local tools trigger
// a refresh cycle without waiting for the next scheduled check. It provides:
//   - Persisted state and the result of the most recent cycle
//   - On-demand refresh
//   - Recent user-facing messages
//   - Prometheus metrics
//
// # Response Format
//
// Successful responses are wrapped in a data object:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "ERROR_CODE",
//	    "message": "Human-readable error message",
//	    "details": { /* optional context */ }
//	  }
//	}
//
// # Access
//
// Requests are only accepted from loopback and private networks, so the
// server may bind to 0.0.0.0 on a router.
package api
