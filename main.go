package main

import (
	"fmt"
	"os"
	"strings"

	"postsapi/app/config"
	"postsapi/service"
)

// CliVersion is reported by the version command.
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args to a command and exits with its status.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
		exit(0)
	case "version":
		fmt.Printf("postsapi version %s\n", CliVersion)
		exit(0)
	case "serve":
		exit(service.RunServer(config.DefaultEnvFiles, os.Stdout))
	case "db":
		exit(runDB(os.Args[2:]))
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func runDB(args []string) int {
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if cfg.Store.Backend != config.BackendBadger {
		fmt.Printf("Error: db commands only support the badger backend (configured: %s)\n", cfg.Store.Backend)
		return 1
	}
	return service.NewCommands(cfg.Store.BadgerPath).Run(args)
}

func printHelp() {
	helpText := `Usage: postsapi <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve                          Run the Posts & Comments HTTP API.
  db <init|clean|backup|restore> Maintain the Badger database (see "db help").

Configuration is read from POSTSAPI_* environment variables and from
.env.dev / .env in the working directory.
`
	fmt.Println(helpText)
}
