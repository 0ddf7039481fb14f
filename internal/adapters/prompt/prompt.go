// Package prompt implements the confirmation gate as a y/N question on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when confirmation is needed but stdin is not a terminal.
var ErrNotInteractive = zerr.New("confirmation requires an interactive terminal; pass --yes to skip it")

var affirmative = map[string]bool{"s": true, "si": true, "sí": true, "y": true, "yes": true}

// Terminal asks on out and reads the answer from in.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	interactive func() bool

	mu        sync.Mutex
	assumeYes bool
	reader    *bufio.Reader
}

var _ ports.Confirmer = (*Terminal)(nil)

// Option configures a Terminal.
type Option func(*Terminal)

// WithInteractive overrides terminal detection.
func WithInteractive(fn func() bool) Option {
	return func(t *Terminal) {
		t.interactive = fn
	}
}

// New creates a Terminal over in and out. Unless overridden, in counts as
// interactive only when it is an *os.File attached to a terminal.
func New(in io.Reader, out io.Writer, opts ...Option) *Terminal {
	t := &Terminal{in: in, out: out, reader: bufio.NewReader(in)}
	t.interactive = func() bool { return isTerminal(in) }
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetAssumeYes makes every Confirm succeed without asking.
func (t *Terminal) SetAssumeYes(yes bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assumeYes = yes
}

// Confirm writes the prompt and waits for an answer. Only an explicit yes
// confirms; an empty line or end of input declines.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	t.mu.Lock()
	yes := t.assumeYes
	t.mu.Unlock()
	if yes {
		return true, nil
	}
	if !t.interactive() {
		return false, ErrNotInteractive
	}

	if _, err := fmt.Fprintf(t.out, "%s [s/N]: ", prompt); err != nil {
		return false, zerr.Wrap(err, "failed to write prompt")
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, errors.Join(domain.ErrCancelled, ctx.Err())
	case a := <-ch:
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return false, zerr.Wrap(a.err, "failed to read answer")
		}
		return affirmative[strings.ToLower(strings.TrimSpace(a.line))], nil
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int on supported platforms
}
