package translate

import "errors"

// ErrEmptyTranslation indicates the model returned no usable text.
var ErrEmptyTranslation = errors.New("empty translation")
