// Package prompt asks the operator questions on a line-oriented terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	healerrors "github.com/ailevelup-ai/heal-mcp/internal/errors"
	"github.com/ailevelup-ai/heal-mcp/internal/term"
)

// Prompter reads one answer per line from in and writes questions to out.
// Reading happens on a background goroutine so a cancelled context interrupts a pending question.
type Prompter struct {
	out   io.Writer
	in    io.Reader
	once  sync.Once
	lines chan string
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Writer returns where questions are written.
func (p *Prompter) Writer() io.Writer {
	return p.out
}

func (p *Prompter) start() {
	p.once.Do(func() {
		p.lines = make(chan string)
		go func() {
			defer close(p.lines)
			r := bufio.NewReader(p.in)
			for {
				s, err := r.ReadString('\n')
				if s != "" || err == nil {
					p.lines <- strings.TrimRight(s, "\r\n")
				}
				if err != nil {
					return
				}
			}
		}()
	})
}

// readLine waits for the next line of input.
// End of input and context cancellation both return ErrCancelled.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	p.start()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", healerrors.ErrCancelled, ctx.Err())
	case l, ok := <-p.lines:
		if !ok {
			return "", healerrors.ErrCancelled
		}
		return l, nil
	}
}

// Input asks for free text, returned without surrounding whitespace.
func (p *Prompter) Input(ctx context.Context, question string) (string, error) {
	_, _ = term.Accent.Fprintf(p.out, "%s: ", question)

	s, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(s), nil
}

// Confirm asks a yes/no question until it gets 'y', 'yes', 'n' or 'no'.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		_, _ = term.Warning.Fprintf(p.out, "\n%s (y/n): ", question)

		s, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(s)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		_, _ = term.Failure.Fprintln(p.out, "Please enter 'y' or 'n'")
	}
}

// Choose shows a numbered menu and returns the 0-based index of the chosen option.
// Entering 0 selects cancelLabel and returns -1. When cancelLabel is empty there is no 0 entry.
func (p *Prompter) Choose(ctx context.Context, title string, options []string, cancelLabel string) (int, error) {
	if len(options) == 0 && cancelLabel == "" {
		return -1, fmt.Errorf("no options to choose from")
	}

	_, _ = term.Bold.Fprintf(p.out, "\n%s\n", title)
	for i, opt := range options {
		_, _ = fmt.Fprintf(p.out, "  %d. %s\n", i+1, opt)
	}
	if cancelLabel != "" {
		_, _ = fmt.Fprintf(p.out, "  0. %s\n", cancelLabel)
	}

	for {
		_, _ = term.Accent.Fprint(p.out, "\nEnter choice: ")

		s, err := p.readLine(ctx)
		if err != nil {
			return -1, err
		}

		n, err := strconv.Atoi(strings.TrimSpace(s))
		switch {
		case err != nil:
		case n == 0 && cancelLabel != "":
			return -1, nil
		case n >= 1 && n <= len(options):
			return n - 1, nil
		}

		_, _ = term.Failure.Fprintln(p.out, "Invalid choice. Please try again.")
	}
}
