package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrSessionExpired = fmt.Errorf("session expired")
	ErrReauthFailed   = fmt.Errorf("re-authentication failed")
	ErrNoToken        = fmt.Errorf("no token cached")

	// Upload errors
	ErrNoFileSelected   = fmt.Errorf("no file selected")
	ErrInvalidImage     = fmt.Errorf("file is not a supported image")
	ErrUploadInProgress = fmt.Errorf("an upload is already in progress")
	ErrUploadFailed     = fmt.Errorf("upload failed")
	ErrRejected         = fmt.Errorf("upload rejected")
	ErrNoResult         = fmt.Errorf("no result available")
	ErrUnexpected       = fmt.Errorf("unexpected error")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
