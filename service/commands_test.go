package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects command output into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func mockStdin(t *testing.T, input string) {
	old := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = old })
}

// writeConfig creates a config file pointing storage into a temp dir.
func writeConfig(t *testing.T) (string, config.AppConfig) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "badger")
	backupDir := filepath.Join(dir, "backups")
	content := "storage:\n" +
		"  path: " + dataDir + "\n" +
		"  backup_dir: " + backupDir + "\n" +
		"logging:\n" +
		"  level: error\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return path, cfg
}

func TestHandleCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: quill db <command>",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: quill db <command>",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown db command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "dangling config flag",
			args:           []string{"init", "--config"},
			expectedOutput: "--config requires a file path",
			expectedExit:   1,
		},
		{
			name:           "missing config file",
			args:           []string{"init", "--config", "/nonexistent/quill.yaml"},
			expectedOutput: "failed to read config",
			expectedExit:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(t)

			exitCode := HandleCommand(tt.args)

			assert.Contains(t, output.String(), tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"restore", "--config=c.yaml", "file.db", "-y"})
	require.NoError(t, err)
	assert.Equal(t, "c.yaml", opts.configPath)
	assert.True(t, opts.yes)
	assert.Equal(t, []string{"restore", "file.db"}, opts.args)

	opts, err = parseOptions([]string{"--config", "other.yaml", "backup"})
	require.NoError(t, err)
	assert.Equal(t, "other.yaml", opts.configPath)
	assert.False(t, opts.yes)
	assert.Equal(t, []string{"backup"}, opts.args)
}

func TestDatabaseCommands(t *testing.T) {
	cfgPath, cfg := writeConfig(t)

	t.Run("init creates the database", func(t *testing.T) {
		output := captureOutput(t)
		assert.Equal(t, 0, HandleCommand([]string{"init", "--config", cfgPath}))
		assert.Contains(t, output.String(), "Database initialized successfully")
		assert.DirExists(t, cfg.Storage.Path)

		output.Reset()
		assert.Equal(t, 0, HandleCommand([]string{"init", "--config", cfgPath}))
		assert.Contains(t, output.String(), "Database already exists")
	})

	// Seed one post
	store, err := openStore(cfg)
	require.NoError(t, err)
	_, err = seedPost(store)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	t.Run("backup", func(t *testing.T) {
		output := captureOutput(t)
		assert.Equal(t, 0, HandleCommand([]string{"backup", "--config", cfgPath}))
		assert.Contains(t, output.String(), "Database backed up successfully")

		files, err := filepath.Glob(filepath.Join(cfg.Storage.BackupDir, "backup_*.db"))
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("clean asks for confirmation", func(t *testing.T) {
		output := captureOutput(t)
		mockStdin(t, "n\n")
		assert.Equal(t, 1, HandleCommand([]string{"clean", "--config", cfgPath}))
		assert.Contains(t, output.String(), "Operation cancelled")
		assert.Equal(t, 1, countPosts(t, cfg))
	})

	t.Run("clean with confirmation", func(t *testing.T) {
		output := captureOutput(t)
		mockStdin(t, "y\n")
		assert.Equal(t, 0, HandleCommand([]string{"clean", "--config", cfgPath}))
		assert.Contains(t, output.String(), "Database cleaned successfully")
		assert.Equal(t, 0, countPosts(t, cfg))
	})

	t.Run("restore brings the data back", func(t *testing.T) {
		files, err := filepath.Glob(filepath.Join(cfg.Storage.BackupDir, "backup_*.db"))
		require.NoError(t, err)
		require.Len(t, files, 1)

		output := captureOutput(t)
		assert.Equal(t, 0, HandleCommand([]string{"restore", files[0], "--config", cfgPath, "--yes"}))
		assert.Contains(t, output.String(), "Database restored successfully")
		assert.Equal(t, 1, countPosts(t, cfg))
	})

	t.Run("restore from missing file", func(t *testing.T) {
		output := captureOutput(t)
		assert.Equal(t, 1, HandleCommand([]string{"restore", "/nonexistent.db", "--config", cfgPath}))
		assert.Contains(t, output.String(), "Backup file does not exist")
	})

	t.Run("restore from empty file", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.db")
		require.NoError(t, os.WriteFile(empty, nil, 0644))

		output := captureOutput(t)
		assert.Equal(t, 1, HandleCommand([]string{"restore", empty, "--config", cfgPath, "--yes"}))
		assert.Contains(t, output.String(), "Backup file is empty")
	})
}

func TestCleanMissingDatabase(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	output := captureOutput(t)

	assert.Equal(t, 0, HandleCommand([]string{"clean", "--config", cfgPath, "--yes"}))
	assert.Contains(t, output.String(), "already clean")

	output.Reset()
	assert.Equal(t, 1, HandleCommand([]string{"backup", "--config", cfgPath}))
	assert.Contains(t, output.String(), "No database exists to backup")
}
