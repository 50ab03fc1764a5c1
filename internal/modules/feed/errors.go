package feed

import "errors"

var (
	ErrTokenMissing = errors.New("token is required")
	ErrForbidden    = errors.New("admin role required")
	ErrHubClosed    = errors.New("feed is shutting down")
)
