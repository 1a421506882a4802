package main

import (
	"fmt"
	"os"
	"strings"

	"quill/service"
)

const CliVersion = "1.0.0"

// exit is replaced in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line to the matching command.
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
	case "version":
		fmt.Printf("quill version %s\n", CliVersion)
	case "serve":
		exit(service.RunAppServer(os.Args[2:]))
	case "db":
		exit(service.HandleCommand(os.Args[2:]))
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: quill <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve [--config <file>]        Run the blog API server until interrupted.
  db <command> [--config <file>] [--yes]
                                 Manage the database:
                                   init            create an empty database
                                   clean           remove all data
                                   backup [dir]    write a backup file
                                   restore <file>  load a backup file
`
	fmt.Println(helpText)
}
