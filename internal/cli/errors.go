package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Site errors
	ErrSiteNotFound      = "SITE_NOT_FOUND"
	ErrConfigInvalid     = "CONFIG_INVALID"
	ErrSiteConfigInvalid = "SITE_CONFIG_INVALID"

	// Inventory errors
	ErrInventoryCollisions = "INVENTORY_COLLISIONS"
	ErrSiteUnreadable      = "SITE_UNREADABLE"

	// Pipeline errors
	ErrUnknownPass = "UNKNOWN_PASS"

	// File errors
	ErrFileExists     = "FILE_EXISTS"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// Check results
	ErrCheckFailed = "CHECK_FAILED"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes attached to successful responses.
const (
	WarnSkippedFolder = "SKIPPED_FOLDER"
)
