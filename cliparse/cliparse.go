package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

// DefaultTimezone attributes timestamps for audit display. It has no
// bearing on correctness; drinks are stored in UTC.
const DefaultTimezone = "Australia/Melbourne"

type Config struct {
	Port        int
	DatabaseURL string

	// Secrets
	AuthKey  string // shared key Slack must present as ?key=
	AdminKey string // static key for `/coffee auth`; empty disables

	Timezone string

	// S3 backup settings; backups are disabled when Bucket is empty
	AWSRegion       string
	AWSBucket       string
	AWSBackupPrefix string
	AWSAccessKeyID  string
	AWSSecretKey    string

	// Optional legacy passthrough relay
	PassthroughHost string
	PassthroughPort int
}

// ParseFlags validates flags with environment variable fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("coffeebot", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.Timezone, "tz", "", "IANA timezone for display and scheduling")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AuthKey, "auth-key", "", "Slack request key (prefer env)")
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin identification key (prefer env)")

	// Backup settings
	fs.StringVar(&cfg.AWSRegion, "aws-region", "", "AWS region for backups")
	fs.StringVar(&cfg.AWSBucket, "aws-bucket", "", "S3 bucket for backups")
	fs.StringVar(&cfg.AWSBackupPrefix, "aws-prefix", "", "S3 key prefix for backups")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.Timezone == "" {
		cfg.Timezone = os.Getenv("TIMEZONE")
		if cfg.Timezone == "" {
			cfg.Timezone = DefaultTimezone
		}
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, errors.New("invalid TIMEZONE: " + cfg.Timezone)
	}

	// The request key MUST be provided; every Slack call carries it
	if cfg.AuthKey == "" {
		cfg.AuthKey = os.Getenv("AUTH_KEY")
	}
	if cfg.AuthKey == "" {
		return Config{}, errors.New("AUTH_KEY required")
	}

	// Admin key is optional; when empty the `auth` command always fails
	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("ADMIN_KEY")
	}

	if cfg.AWSRegion == "" {
		cfg.AWSRegion = os.Getenv("AWS_REGION")
	}
	if cfg.AWSBucket == "" {
		cfg.AWSBucket = os.Getenv("AWS_BUCKET_NAME")
	}
	if cfg.AWSBackupPrefix == "" {
		cfg.AWSBackupPrefix = os.Getenv("AWS_BACKUP_FOLDER")
	}
	cfg.AWSAccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.AWSSecretKey = os.Getenv("AWS_SECRET_KEY")

	cfg.PassthroughHost = os.Getenv("REQUEST_PASSTHROUGH_HOST")
	if portStr := os.Getenv("REQUEST_PASSTHROUGH_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, errors.New("invalid REQUEST_PASSTHROUGH_PORT env variable")
		}
		cfg.PassthroughPort = port
	}

	return cfg, nil
}

// Location resolves the configured timezone. ParseFlags has already
// validated it, so errors only occur for hand-built configs.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.LoadLocation(DefaultTimezone)
	}
	return time.LoadLocation(c.Timezone)
}
