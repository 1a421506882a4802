package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quill/config"
)

// restoreMaxPendingWrites bounds buffered writes while loading a backup.
const restoreMaxPendingWrites = 256

// HandleCommand handles db subcommands and returns an exit code.
func HandleCommand(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	if len(opts.args) < 1 {
		printDbHelp()
		return 1
	}

	cmd := opts.args[0]
	if cmd == "help" {
		printDbHelp()
		return 0
	}

	switch cmd {
	case "init", "clean", "backup", "restore":
	default:
		fmt.Fprintf(stdout, "Unknown db command: %s\n\n", cmd)
		printDbHelp()
		return 1
	}
	if cmd == "restore" && len(opts.args) < 2 {
		fmt.Fprintln(stdout, "Error: backup file path required for restore")
		return 1
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	if cfg.Storage.InMemory {
		fmt.Fprintln(stdout, "Error: db commands need an on-disk store (storage.in_memory is set)")
		return 1
	}

	switch cmd {
	case "init":
		return initDb(cfg)
	case "clean":
		return clean(cfg, opts.yes)
	case "backup":
		dir := cfg.Storage.BackupDir
		if len(opts.args) > 1 {
			dir = opts.args[1]
		}
		return backup(cfg, dir)
	default:
		return restore(cfg, opts.args[1], opts.yes)
	}
}

// printDbHelp prints help for db subcommands.
func printDbHelp() {
	helpText := `Usage: quill db <command> [--config <file>] [--yes]

Commands:
  init                            Initialize a new empty database
  clean                           Remove every post, comment, tag and image
  backup [dir]                    Create a backup of the database
  restore <file>                  Restore database from backup
  help                            Display this help message
`
	fmt.Fprintln(stdout, helpText)
}

func dbExists(cfg config.AppConfig) bool {
	_, err := os.Stat(cfg.Storage.Path)
	return err == nil
}

// initDb initializes a new empty database.
func initDb(cfg config.AppConfig) int {
	if dbExists(cfg) {
		fmt.Fprintln(stdout, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return 0
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Fprintf(stdout, "Database initialized successfully at %s\n", cfg.Storage.Path)
	return 0
}

// clean drops every key from the database.
func clean(cfg config.AppConfig, yes bool) int {
	if !dbExists(cfg) {
		fmt.Fprintln(stdout, "Database is already clean (does not exist)")
		return 0
	}

	if !yes && !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(stdout, "Operation cancelled")
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		fmt.Fprintf(stdout, "Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Database cleaned successfully")
	return 0
}

// backup writes a full backup of the database into dir.
func backup(cfg config.AppConfig, dir string) int {
	if !dbExists(cfg) {
		fmt.Fprintln(stdout, "No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(stdout, "Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := store.DB().Backup(f, 0); err != nil {
		fmt.Fprintf(stdout, "Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database contents with a backup.
func restore(cfg config.AppConfig, backupFile string, yes bool) int {
	fi, err := os.Stat(backupFile)
	if err != nil {
		fmt.Fprintf(stdout, "Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Fprintf(stdout, "Backup file is empty: %s\n", backupFile)
		return 1
	}

	replace := dbExists(cfg)
	if replace && !yes && !confirm("Existing database found. Do you want to replace it?") {
		fmt.Fprintln(stdout, "Operation cancelled")
		return 1
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if replace {
		if err := store.Clear(); err != nil {
			fmt.Fprintf(stdout, "Failed to remove existing data: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.DB().Load(f, restoreMaxPendingWrites)
	}()
	if err != nil {
		fmt.Fprintf(stdout, "Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Database restored successfully")
	return 0
}
