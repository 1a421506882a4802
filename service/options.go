package service

import (
	"fmt"
	"io"
	"os"
	"strings"

	"quill/app/logger"
	"quill/app/repositories"
	"quill/config"
)

// Console streams, swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	yes        bool
	args       []string
}

// parseOptions pulls --config <file> and --yes out of args and keeps the
// remaining positional arguments in order.
func parseOptions(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--config":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--config requires a file path")
			}
			opts.configPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			opts.configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--yes" || arg == "-y":
			opts.yes = true
		default:
			opts.args = append(opts.args, arg)
		}
	}
	return opts, nil
}

// loadConfig loads the configuration and points the global logger at its level.
func loadConfig(path string) (config.AppConfig, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	logger.Init(cfg.Logging.Level)
	return cfg, nil
}

// openStore opens the Badger store described by cfg.
func openStore(cfg config.AppConfig) (*repositories.BadgerStore, error) {
	opts := repositories.Options{
		Path:       cfg.Storage.Path,
		SyncWrites: cfg.Storage.SyncWrites,
		Logger:     logger.Badger{},
	}
	if cfg.Storage.InMemory {
		opts.Path = ""
	}
	return repositories.OpenBadgerStore(opts)
}

// confirm asks a yes/no question on the console. Anything but y/Y is a no.
func confirm(question string) bool {
	fmt.Fprintf(stdout, "%s [y/N] ", question)
	var response string
	fmt.Fscanln(stdin, &response)
	return response == "y" || response == "Y"
}
