package downloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Prompter asks the operator a yes/no question. Confirm returns early with
// an interrupted error when ctx is done.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// PromptFunc adapts a function to the Prompter interface.
type PromptFunc func(ctx context.Context, question string) (bool, error)

func (f PromptFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// LinePrompter reads y/n answers line by line, asking again on anything else.
// One goroutine owns the reader; a line typed after a cancelled prompt
// answers the next Confirm.
type LinePrompter struct {
	out   io.Writer
	in    io.Reader
	start sync.Once
	lines chan lineRead
}

type lineRead struct {
	text string
	err  error
}

// NewLinePrompter reads answers from in and writes questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{out: out, in: in, lines: make(chan lineRead)}
}

// NewStdinPrompter prompts on the controlling terminal streams.
func NewStdinPrompter() *LinePrompter {
	return NewLinePrompter(os.Stdin, os.Stderr)
}

func (p *LinePrompter) readLines() {
	defer close(p.lines)
	reader := bufio.NewReader(p.in)
	for {
		text, err := reader.ReadString('\n')
		p.lines <- lineRead{text: text, err: err}
		if err != nil {
			return
		}
	}
}

func (p *LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	p.start.Do(func() { go p.readLines() })
	for {
		fmt.Fprintf(p.out, "%s [y/n]: ", question)

		var line lineRead
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out)
			return false, WrapCategory(CategoryInterrupted, ctx.Err())
		case read, ok := <-p.lines:
			line = read
			if !ok {
				line.err = io.EOF
			}
		}

		switch strings.ToLower(strings.TrimSpace(line.text)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if line.err != nil {
			if errors.Is(line.err, io.EOF) {
				fmt.Fprintln(p.out)
				return false, WrapCategory(CategoryInterrupted, fmt.Errorf("%w: no answer on input", ErrAborted))
			}
			return false, WrapCategory(CategoryInterrupted, line.err)
		}
	}
}
