package cmd

// Version is the application version, intended to be set at build time:
//
//	go build -ldflags "-X github.com/vulndeck/vulndeck-cli/cmd.Version=1.2.0"
var Version = "1.0"
