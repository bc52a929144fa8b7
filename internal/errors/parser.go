package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed error: a stable code plus a safe message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a low-level error into a user-safe code and message.
// Store internals never reach the client; only the category does.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    VenueNotFound,
			Message: context + " not found",
		}
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "duplicate") || strings.Contains(errStr, "unique constraint"):
		return ErrorInfo{
			Code:    ValidationInvalidInput,
			Message: context + " already exists",
		}
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "refused"):
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "Database temporarily unavailable",
		}
	default:
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}
}
