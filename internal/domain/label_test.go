package domain

import (
	"errors"
	"testing"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    Label
		wantErr bool
	}{
		{"boo", LabelBoo, false},
		{"simba", LabelSimba, false},
		{"unclear", LabelUnclear, false},
		{"Boo", "", true},
		{"discard", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLabel(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownLabel) {
					t.Fatalf("ParseLabel(%q) err = %v, want ErrUnknownLabel", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLabel(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseLabel(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFolderMapping_For(t *testing.T) {
	m := NewFolderMapping("incoming/", "auto_discard_images/", "boo_images/", "simba_images/", "unclear_images/")

	for label, want := range map[Label]string{
		LabelBoo:     "boo_images/",
		LabelSimba:   "simba_images/",
		LabelUnclear: "unclear_images/",
	} {
		got, err := m.For(label)
		if err != nil {
			t.Fatalf("For(%q) unexpected error: %v", label, err)
		}
		if got != want {
			t.Errorf("For(%q) = %q, want %q", label, got, want)
		}
	}

	if _, err := m.For(Label("stray")); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("For(stray) err = %v, want ErrUnknownLabel", err)
	}
}
