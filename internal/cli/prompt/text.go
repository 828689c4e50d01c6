package prompt

import (
	"github.com/manifoldco/promptui"
)

// OptionalText asks for one line of free text. Enter with no input means
// "nothing to add" and returns the empty string.
func OptionalText(label string) (string, error) {
	p := promptui.Prompt{Label: label + " (optional)"}

	s, err := p.Run()
	if err != nil {
		return "", wrapError(err)
	}
	return s, nil
}
