package lang

import "errors"

// ErrInvalid indicates a code that names no dubbable language.
var ErrInvalid = errors.New("invalid language code")
