// Package snake asks for command input on the terminal when it was not given
// as flags.
package snake

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompter reads answers from In and draws prompts on Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

var templates = &promptui.PromptTemplates{
	Prompt:  "{{ . }}: ",
	Valid:   "{{ . | green }}: ",
	Invalid: "{{ . | red }}: ",
	Success: "{{ . | bold }}: ",
}

// String asks for a line of text. An empty answer takes def. validate may be
// nil.
func (p Prompter) String(label, def string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		Templates: templates,
		Validate: func(input string) error {
			if input == "" {
				input = def
			}
			if validate == nil {
				return nil
			}
			return validate(input)
		},
		Stdin:  p.stdin(),
		Stdout: p.stdout(),
	}
	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", label, err)
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = def
	}
	return result, nil
}

// Required is a validate func rejecting blank answers.
func Required(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("required")
	}
	return nil
}
