package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Uploads   UploadsConfig   `yaml:"uploads"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// StorageConfig describes the Badger data directory. InMemory wins over Path.
type StorageConfig struct {
	Path       string `yaml:"path"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
	BackupDir  string `yaml:"backup_dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RateLimitConfig bounds like requests per client. Zero disables the limit.
// Clients are keyed by connection address; X-Forwarded-For is honored only
// from TrustedProxies (IPs or CIDR ranges).
type RateLimitConfig struct {
	LikesPerMinute int      `yaml:"likes_per_minute"`
	Burst          int      `yaml:"burst"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type UploadsConfig struct {
	MaxImageBytes int64 `yaml:"max_image_bytes"`
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Storage: StorageConfig{
			Path:      "data/badger",
			BackupDir: "data/backups",
		},
		Logging:   LoggingConfig{Level: "info"},
		RateLimit: RateLimitConfig{LikesPerMinute: 120, Burst: 20},
		CORS:      CORSConfig{AllowedOrigins: []string{"*"}},
		Uploads:   UploadsConfig{MaxImageBytes: 10 << 20},
	}
}

// Load reads .env and the yaml file at path on top of Default, then applies
// environment overrides. An empty path searches upwards from the working
// directory for config.yaml; a missing file is not an error in that case.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if base := GetBasePath(); base != "" {
			path = filepath.Join(base, CONFIG_FILE)
		}
	}

	// load environment variables next to the config file, if any
	envDir := "."
	if path != "" {
		envDir = filepath.Dir(path)
	}
	envPath := filepath.Join(envDir, ENV_FILE)
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	cfg.Server.Addr = getEnv("QUILL_ADDR", cfg.Server.Addr)
	cfg.Storage.Path = getEnv("QUILL_DATA_DIR", cfg.Storage.Path)
	cfg.Logging.Level = getEnv("QUILL_LOG_LEVEL", cfg.Logging.Level)
	if v := os.Getenv("QUILL_IN_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.InMemory = b
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBasePath walks up from the working directory to the first one holding
// config.yaml. It returns "" when none is found.
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
