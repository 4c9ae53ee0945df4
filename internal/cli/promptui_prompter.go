package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// menuSize is the number of sets visible at once in the selection menu.
const menuSize = 10

var setTemplates = &promptui.SelectTemplates{
	Label:    "{{ . }}",
	Active:   "▸ {{ . | cyan | underline }}",
	Inactive: "  {{ . }}",
	Selected: "Configuration: {{ . | cyan }}",
}

// PromptUI is the terminal Prompter backed by promptui.
type PromptUI struct {
	in  io.ReadCloser
	out io.WriteCloser
}

// NewPromptUI binds a PromptUI to in and out. Nil streams fall back to the
// process stdin and stdout.
func NewPromptUI(in io.Reader, out io.Writer) *PromptUI {
	pu := &PromptUI{in: os.Stdin, out: os.Stdout}
	if in != nil {
		pu.in = readCloser(in)
	}
	if out != nil {
		pu.out = writeCloser(out)
	}
	return pu
}

// Select shows items as a searchable menu. The cursor starts on
// defaultValue when it is one of the items.
func (p *PromptUI) Select(label string, items []string, defaultValue string) (int, string, error) {
	start := 0
	for i := range items {
		if items[i] == defaultValue {
			start = i
			break
		}
	}

	menu := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: setTemplates,
		Size:      menuSize,
		CursorPos: start,
		HideHelp:  true,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), strings.ToLower(input))
		},
		Stdin:  p.in,
		Stdout: p.out,
	}
	i, name, err := menu.Run()
	if err != nil {
		return i, name, cancelled(err)
	}
	return i, name, nil
}

// Prompt reads one line.
func (p *PromptUI) Prompt(label string) (string, error) {
	line := promptui.Prompt{Label: label, Stdin: p.in, Stdout: p.out}
	value, err := line.Run()
	if err != nil {
		return "", cancelled(err)
	}
	return value, nil
}

// Confirm asks a yes/no question. A plain "no" is not an error.
func (p *PromptUI) Confirm(label string, defaultYes bool) (bool, error) {
	question := promptui.Prompt{Label: label, IsConfirm: true, Stdin: p.in, Stdout: p.out}
	if defaultYes {
		question.Default = "y"
	}
	answer, err := question.Run()
	switch {
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case err != nil:
		return false, cancelled(err)
	}
	return answer == "" || strings.EqualFold(answer, "y"), nil
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %v", ErrPromptCancelled, err)
}

func readCloser(r io.Reader) io.ReadCloser {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeCloser(w io.Writer) io.WriteCloser {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}
	return nopCloser{w}
}
