package domain

import "fmt"

// Label is the tagging outcome for an image. The set is closed: any other
// value is rejected at the API boundary so a folder lookup can never miss.
type Label string

const (
	LabelBoo     Label = "boo"
	LabelSimba   Label = "simba"
	LabelUnclear Label = "unclear"
)

// Labels lists all valid labels in presentation order.
func Labels() []Label {
	return []Label{LabelBoo, LabelSimba, LabelUnclear}
}

// ParseLabel validates a user-supplied label string.
func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case LabelBoo, LabelSimba, LabelUnclear:
		return Label(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
}

func (l Label) String() string {
	return string(l)
}
