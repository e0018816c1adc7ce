package dub

import "errors"

// ErrNoAudio indicates the source track is empty.
var ErrNoAudio = errors.New("source track has no audio")

// ErrWindowFailed indicates a window could not produce any audio; its span
// is replaced by silence and the run continues degraded.
var ErrWindowFailed = errors.New("window processing failed")

// ErrTooManyFailures indicates a window exceeded its collaborator failure
// budget and was abandoned.
var ErrTooManyFailures = errors.New("too many collaborator failures in window")

// ErrMemoryCeiling indicates the memory ceiling was still exceeded after a
// forced reclaim, so the window was abandoned.
var ErrMemoryCeiling = errors.New("memory ceiling exceeded")
