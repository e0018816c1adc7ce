package ffmpeg

// White-box tests: the statter and env provider interfaces are unexported,
// so resolution precedence is exercised with in-package fakes.

import (
	"errors"
	"os"
	"testing"
)

type fakeStatter struct {
	exists map[string]bool
}

func (f fakeStatter) Stat(name string) (os.FileInfo, error) {
	if f.exists[name] {
		return nil, nil
	}
	return nil, os.ErrNotExist
}

type fakeEnv struct {
	vars     map[string]string
	lookPath map[string]string
}

func (f fakeEnv) Getenv(key string) string { return f.vars[key] }

func (f fakeEnv) LookPath(file string) (string, error) {
	if p, ok := f.lookPath[file]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("env variable wins over PATH", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(
			WithEnvProvider(fakeEnv{
				vars:     map[string]string{envFFmpegPath: "/opt/ffmpeg/bin/ffmpeg"},
				lookPath: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
			}),
			WithFileStatter(fakeStatter{exists: map[string]bool{"/opt/ffmpeg/bin/ffmpeg": true}}),
		)
		got, err := r.Resolve()
		if err != nil {
			t.Fatalf("Resolve() unexpected error: %v", err)
		}
		if got != "/opt/ffmpeg/bin/ffmpeg" {
			t.Errorf("Resolve() = %q, want the env path", got)
		}
	})

	t.Run("env variable pointing nowhere is an error, not a fallback", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(
			WithEnvProvider(fakeEnv{
				vars:     map[string]string{envFFmpegPath: "/nope/ffmpeg"},
				lookPath: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
			}),
			WithFileStatter(fakeStatter{}),
		)
		if _, err := r.Resolve(); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("falls back to PATH", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(
			WithEnvProvider(fakeEnv{lookPath: map[string]string{"ffmpeg": "/usr/local/bin/ffmpeg"}}),
			WithFileStatter(fakeStatter{}),
		)
		got, err := r.Resolve()
		if err != nil {
			t.Fatalf("Resolve() unexpected error: %v", err)
		}
		if got != "/usr/local/bin/ffmpeg" {
			t.Errorf("Resolve() = %q, want the PATH hit", got)
		}
	})

	t.Run("not found anywhere", func(t *testing.T) {
		t.Parallel()

		r := NewResolver(
			WithEnvProvider(fakeEnv{}),
			WithFileStatter(fakeStatter{}),
		)
		if _, err := r.Resolve(); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve() error = %v, want ErrNotFound", err)
		}
	})
}
