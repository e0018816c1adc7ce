// Package dub orchestrates a dubbing run: it partitions the recording
// into bounded windows, drives transcription, translation and synthesis
// through injected collaborator handles, aligns and fits each window's
// clips, and combines everything into one duration-locked output track
// with the original audio mixed underneath as ambient bed.
package dub

import (
	"context"

	"github.com/alnah/go-dubber/internal/align"
	"github.com/alnah/go-dubber/internal/audio"
)

// Transcriber converts a source audio file into ordered, timestamped
// utterances. An empty result is valid; the controller falls back to
// treating the whole track as one utterance.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, sourceLang string) ([]align.Utterance, error)
}

// Translator converts utterance text between languages. Implementations
// return the original text rather than an error when translation fails;
// a failed translation must never fail the pipeline.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Synthesizer produces a spoken clip for translated text, optionally
// imitating the voice in the speaker reference track. Clip duration is
// unconstrained and unrelated to the source utterance's span. A failed
// synthesis is signaled by an error; the controller covers that span
// with silence instead.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, speakerRef audio.Track, targetLang string) (audio.Track, error)
}
