package prompt

import (
	"github.com/manifoldco/promptui"
)

// ratingScale lists the five choices for a transfer rating, best first,
// since a happy user should reach their answer in one keystroke.
var ratingScale = []struct {
	Label string
	Score int
}{
	{Label: "5 - Excellent", Score: 5},
	{Label: "4 - Good", Score: 4},
	{Label: "3 - Okay", Score: 3},
	{Label: "2 - Poor", Score: 2},
	{Label: "1 - Terrible", Score: 1},
}

// Rating asks for a 1-5 score with an arrow-key list and returns the
// numeric score.
func Rating(label string) (int, error) {
	sel := promptui.Select{
		Label: label,
		Items: ratingScale,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .Label | cyan }}",
			Inactive: "  {{ .Label | white }}",
			Selected: "* {{ .Label | green }}",
		},
		Size: len(ratingScale),
	}

	i, _, err := sel.Run()
	if err != nil {
		return 0, wrapError(err)
	}
	return ratingScale[i].Score, nil
}
