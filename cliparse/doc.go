// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - DatabaseURL: PostgreSQL connection string (required)
  - AuthKey: shared key Slack presents as ?key= (required)
  - AdminKey: key accepted by `/coffee auth` (optional; empty disables)
  - Timezone: IANA zone for display and the nightly backup schedule
    (default: Australia/Melbourne)
  - AWSRegion / AWSBucket / AWSBackupPrefix: S3 backup destination;
    backups are disabled when the bucket is empty
  - PassthroughHost / PassthroughPort: optional legacy relay target

# Environment Variables

Flags fall back to environment variables:

	PORT                     → -p
	DATABASE_URL             → -d
	TIMEZONE                 → -tz
	AUTH_KEY                 → -auth-key
	ADMIN_KEY                → -admin-key
	AWS_REGION               → -aws-region
	AWS_BUCKET_NAME          → -aws-bucket
	AWS_BACKUP_FOLDER        → -aws-prefix
	AWS_ACCESS_KEY_ID        (env only)
	AWS_SECRET_KEY           (env only)
	REQUEST_PASSTHROUGH_HOST (env only)
	REQUEST_PASSTHROUGH_PORT (env only)

CLI flags take precedence over environment variables. AWS credentials
are env-only so they never appear in process listings.

# Validation

ParseFlags returns an error if DATABASE_URL or AUTH_KEY is missing, or
if TIMEZONE does not resolve to a known IANA zone.
*/
package cliparse
