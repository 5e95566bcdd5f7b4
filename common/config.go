package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		Mode        string   `yaml:"mode"` // debug, release, test
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Records struct {
		Title      string `yaml:"title"`
		Seed       bool   `yaml:"seed"`
		UploadsDir string `yaml:"uploads_dir"`
	} `yaml:"records"`
	Attendance struct {
		ReceiptSecret string `yaml:"receipt_secret"`
		BcryptCost    int    `yaml:"bcrypt_cost"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisKey      string `yaml:"redis_key"`
	} `yaml:"attendance"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Mode = "release"
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Database.DSN = DefaultDSN
	cfg.Log.Level = "info"
	cfg.Records.Title = "Student Records"
	cfg.Records.Seed = true
	cfg.Records.UploadsDir = "uploads"
	cfg.Attendance.ReceiptSecret = "change-me"
	cfg.Attendance.BcryptCost = 10
	cfg.Attendance.RedisKey = "attendance"
	return cfg
}

// LoadConfig reads config.yaml (optional), then .env, then the process
// environment. Later sources win.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Records.Title, "RECORDS_TITLE")
	setString(&cfg.Records.UploadsDir, "UPLOADS_DIR")
	setString(&cfg.Attendance.ReceiptSecret, "RECEIPT_SECRET")
	setString(&cfg.Attendance.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Attendance.RedisKey, "REDIS_KEY")

	if v := os.Getenv("SEED_RECORDS"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse SEED_RECORDS: %w", err)
		}
		cfg.Records.Seed = seed
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
