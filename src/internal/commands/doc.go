// Package commands implements CLI command handlers for keen-threatfeed.
//
// Each command implements the Runner interface:
//   - Init(): Parse arguments and load configuration
//   - Run(): Execute the command
//   - Name(): Return command name for routing
//
// # Available Commands
//
//   - refresh: Run one refresh cycle of the feed
//   - status: Print the persisted refresh state
//   - service: Refresh periodically and serve the HTTP API
//   - init-config: Write a default configuration file
//
// # Example Usage
//
//	cmd := commands.CreateRefreshCommand()
//	ctx := &commands.AppContext{ConfigPath: "/opt/etc/keen-threatfeed/keen-threatfeed.conf"}
//	if err := cmd.Init([]string{"-period", "3600"}, ctx); err != nil {
//	    log.Fatalf("Failed to initialize command: %v", err)
//	}
//	if err := cmd.Run(); err != nil {
//	    log.Fatalf("Failed to run command: %v", err)
//	}
package commands
