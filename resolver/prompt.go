package resolver

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
)

// prompter is the interactive seam of the custom strategy. Tests script
// it; the CLI uses the huh implementation below.
type prompter interface {
	Int(title, description string, def, min, max int) (int, error)
	String(title, def string) (string, error)
}

// huhPrompter renders prompts as huh forms.
type huhPrompter struct{}

func (huhPrompter) Int(title, description string, def, min, max int) (int, error) {
	value := strconv.Itoa(def)
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Description(description).
			Value(&value).
			Validate(func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil {
					return fmt.Errorf("enter a number")
				}
				if n < min || n > max {
					return fmt.Errorf("must be between %d and %d", min, max)
				}
				return nil
			}),
	))
	if err := form.Run(); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (huhPrompter) String(title, def string) (string, error) {
	value := def
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(title).
			Placeholder(def).
			Value(&value),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}
