package telemetry

import "github.com/syncagent/syncagent/internal/errors"

const (
	// Configuration errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidDBPath = errors.ErrorCode("telemetry_invalid_db_path")

	// Flush errors
	ErrFlushFailed = errors.ErrorCode("telemetry_flush_failed")

	// Archive errors
	ErrArchiveInit   = errors.ErrorCode("telemetry_archive_init_failed")
	ErrArchiveAccess = errors.ErrorCode("telemetry_archive_access_failed")
	ErrArchiveClose  = errors.ErrorCode("telemetry_archive_close_failed")
	ErrSchemaInit    = errors.ErrorCode("telemetry_schema_init_failed")
)
