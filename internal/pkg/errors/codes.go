package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer   = 1000
	ErrInvalidParams    = 1001
	ErrNotFound         = 1002
	ErrUnauthorized     = 1003
	ErrForbidden        = 1004
	ErrConflict         = 1005
	ErrTooManyRequests  = 1006
	ErrBadRequest       = 1007
	ErrStoreUnavailable = 1008

	// Search errors (2000-2999)
	ErrSearchInvalidParams   = 2000
	ErrSearchStoreFailed     = 2001
	ErrSearchSessionNotFound = 2002

	// Saved search errors (3000-3999)
	ErrSavedSearchNotFound     = 3000
	ErrSavedSearchNameTaken    = 3001
	ErrSavedSearchInvalidInput = 3002
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:   {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:    {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:         {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:     {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:        {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:         {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests:  {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:       {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrStoreUnavailable: {ErrStoreUnavailable, http.StatusServiceUnavailable, "Store unavailable"},

	// Search errors
	ErrSearchInvalidParams:   {ErrSearchInvalidParams, http.StatusBadRequest, "Invalid search parameters"},
	ErrSearchStoreFailed:     {ErrSearchStoreFailed, http.StatusServiceUnavailable, "Search store failed"},
	ErrSearchSessionNotFound: {ErrSearchSessionNotFound, http.StatusNotFound, "Search session not found"},

	// Saved search errors
	ErrSavedSearchNotFound:     {ErrSavedSearchNotFound, http.StatusNotFound, "Saved search not found"},
	ErrSavedSearchNameTaken:    {ErrSavedSearchNameTaken, http.StatusConflict, "Saved search name already in use"},
	ErrSavedSearchInvalidInput: {ErrSavedSearchInvalidInput, http.StatusBadRequest, "Invalid saved search input"},
}

// GetMessage returns the message for an error code
func GetMessage(code int) string {
	if c, ok := codeMap[code]; ok {
		return c.Message
	}
	return "Unknown error"
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code int) int {
	if c, ok := codeMap[code]; ok {
		return c.Status
	}
	return http.StatusInternalServerError
}

// FormatError formats an error message with optional details
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
