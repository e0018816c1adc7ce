// Package interrupt implements the two-stage Ctrl+C protocol of a dub
// run. The first interrupt cancels the run context; the controller then
// stops at the next window boundary and the already-dubbed prefix is
// still assembled, mixed and muxed, so the partial result is playable.
// A second interrupt shortly after the first aborts the process outright
// for users who want out now, not a partial output.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// abortWindow is how long after the first Ctrl+C a second one still
// means "abort" rather than an unrelated interrupt of the next run stage.
const abortWindow = 2 * time.Second

// abortExitCode is 128 + SIGINT, the conventional interrupt exit status.
const abortExitCode = 130

// abortMessage tells the user the partial dub was given up.
const abortMessage = "\nAborted."

// Handler watches SIGINT/SIGTERM and drives the two-stage protocol.
// The zero value is not usable; construct with NewHandler.
type Handler struct {
	mu        sync.Mutex
	firstAt   time.Time
	signaled  bool
	stopped   bool
	cancelRun context.CancelFunc
	done      chan struct{}

	// Injected for tests.
	exit   func(int)
	now    func() time.Time
	stderr io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	// SigCh delivers the signals to react to. nil means no listener,
	// which a few tests use to exercise the accessors alone.
	SigCh    <-chan os.Signal
	ExitFunc func(int)
	NowFunc  func() time.Time
	// Stderr receives the abort notice. Must tolerate concurrent writes;
	// the default os.Stderr does.
	Stderr io.Writer
}

// NewHandler subscribes to SIGINT/SIGTERM and returns the handler plus a
// context that is canceled on the first signal. The caller passes that
// context into the dub run so cancellation lands between windows.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return NewHandlerWithOptions(parent, Options{SigCh: sigCh})
}

// NewHandlerWithOptions is NewHandler with injectable dependencies.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		cancelRun: cancel,
		done:      make(chan struct{}),
		exit:      opts.ExitFunc,
		now:       opts.NowFunc,
		stderr:    opts.Stderr,
	}
	if h.exit == nil {
		h.exit = os.Exit
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.stderr == nil {
		h.stderr = os.Stderr
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}
	return h, ctx
}

// listen consumes signals until the handler is stopped or the channel
// closes.
func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}
			if h.handle() {
				return
			}
		}
	}
}

// handle processes one signal. Returns true when the listener should
// quit (handler stopped, or the abort path ran).
func (h *Handler) handle() bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return true
	}
	now := h.now()

	if !h.signaled {
		// First Ctrl+C: cancel the run, keep listening for the second.
		h.signaled = true
		h.firstAt = now
		h.cancelRun()
		h.mu.Unlock()
		return false
	}

	if now.Sub(h.firstAt) <= abortWindow {
		h.mu.Unlock()
		fmt.Fprintln(h.stderr, abortMessage)
		h.exit(abortExitCode)
		return true // reached only when the injected exit returns
	}

	h.mu.Unlock()
	return false
}

// WasInterrupted reports whether any signal arrived. Main uses it to
// exit with the interrupt status after a partial dub was still muxed.
func (h *Handler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.signaled
}

// Stop unsubscribes and shuts the listener down. Safe to call twice.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(h.done)
}
