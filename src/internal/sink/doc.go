// Package sink provides destinations for human-readable refresh status messages.
//
// A sink accepts a formatted string and never reports failure back to the
// sender. Sinks compose:
//
//	history := sink.NewHistory(50)
//	out := sink.NewTemplate("[{{module}}] {{message}}", "ThreatIntelligence",
//	    sink.Tee(sink.Log{}, history))
//	out.Send("Updating was successful.")
package sink
