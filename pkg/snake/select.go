package snake

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// Choose asks for one of items and returns it. The cursor starts on def when
// it is one of the items.
func (p Prompter) Choose(label string, items []string, def string) (string, error) {
	cursor := 0
	for i, item := range items {
		if item == def {
			cursor = i
		}
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     items,
		CursorPos: cursor,
		Size:      len(items),
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(strings.TrimSpace(input)))
		},
		Stdin:  p.stdin(),
		Stdout: p.stdout(),
	}

	_, result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", label, err)
	}
	return result, nil
}

func (p Prompter) stdin() io.ReadCloser {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	return io.NopCloser(in)
}

func (p Prompter) stdout() io.WriteCloser {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	return nopWriteCloser{out}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
