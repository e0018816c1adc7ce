package synth

import "errors"

// ErrEmptyText indicates there is nothing to voice.
var ErrEmptyText = errors.New("empty synthesis text")
