package report

import "errors"

var ErrInvalidStatus = errors.New("invalid_status")
