package audio

import "errors"

// ErrFileNotFound indicates the specified audio file does not exist.
var ErrFileNotFound = errors.New("audio file not found")

// ErrInvalidWAV indicates the input is not a decodable WAV file.
var ErrInvalidWAV = errors.New("invalid wav data")

// ErrEmptyTrack indicates an operation received a track with no samples
// or an unusable sample rate.
var ErrEmptyTrack = errors.New("empty audio track")

// ErrRateMismatch indicates two tracks with different sample rates were
// combined without resampling.
var ErrRateMismatch = errors.New("sample rate mismatch")

// ErrEmptyAssembly indicates assembly produced a zero-length output track.
var ErrEmptyAssembly = errors.New("assembly produced empty output")

// ErrNoSpeech indicates silence analysis found no speech intervals to work
// with (e.g. when extracting a speaker reference).
var ErrNoSpeech = errors.New("no speech detected")
