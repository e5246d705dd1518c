// Package config loads subdesk configuration from environment variables.
//
// Every setting has a default, so an empty environment runs against users.txt
// in the working directory.
//
// Storage settings:
//
//	SUBDESK_STORE_TYPE="file"          # file, sqlite, postgres, redis, s3
//	SUBDESK_FILE_PATH="users.txt"
//	SUBDESK_SQLITE_PATH="users.db"
//	SUBDESK_POSTGRES_URL="postgres://localhost/subdesk?sslmode=disable"
//	SUBDESK_REDIS_URL="redis://localhost:6379"
//	SUBDESK_REDIS_KEY="subdesk:subscribers"
//	SUBDESK_S3_BUCKET="subdesk-records"
//	SUBDESK_S3_KEY="users.txt"
//	SUBDESK_S3_REGION="us-east-1"
//
// Catalog and observability settings:
//
//	SUBDESK_CATALOG_PATH="plans.yaml"  # empty: built-in plans
//	SUBDESK_AUDIT_DIR="/var/log/subdesk" # empty: no audit trail
//	SUBDESK_LOG_LEVEL="info"           # debug, info, warn, error
//	SUBDESK_LOG_FORMAT="text"          # text, json
//	SUBDESK_METRICS_FILE="/var/lib/node_exporter/subdesk.prom"
//	SUBDESK_METRICS_SCHEDULE="@every 1m" # rewrite interval during watch
package config
