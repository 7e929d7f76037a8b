package service

import (
	"errors"
)

// Sentinel error kinds for this package.
var (
	ErrUnknownKind = errors.New("unknown entity kind")
)
