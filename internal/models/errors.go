package models

import "errors"

// Sentinel errors surfaced at the command boundary. Layers wrap them with
// fmt.Errorf("...: %w", err) and the REPL matches them with errors.Is; none
// of them terminate the process.
var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrDuplicateName        = errors.New("name already exists")
	ErrReferentialIntegrity = errors.New("unknown referenced record")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidField         = errors.New("invalid field")
	ErrInvalidValue         = errors.New("invalid value")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredential    = errors.New("invalid username or password")
	ErrFileNotFound         = errors.New("file not found")
)
