package common

import "errors"

var (
	ErrorInvalidValue      = errors.New("invalid value")
	ErrorNotFound          = errors.New("not found")
	ErrorUnsupportedCanvas = errors.New("unsupported canvas")
)
