package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// Secret reads a value without echoing it, e.g. a bearer token.
func Secret(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(s string) error {
			if s == "" {
				return errors.New("value is required")
			}
			return nil
		},
	}

	result, err := p.Run()
	if IsAborted(err) {
		return "", ErrAborted
	}
	return result, err
}
