package domain

import (
	"time"
)

// Image is a single candidate pulled from the source folder. The raw bytes
// live only for the duration of a presentation; once the file is moved the
// record is dropped.
type Image struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	CapturedAt   time.Time `json:"captured_at"`
	LastModified time.Time `json:"last_modified"`
	Data         []byte    `json:"-"`
}

// FolderMapping binds each label (plus the automatic discard bucket for
// too-dark images) to a key prefix in the object store. It is built once from
// config and never mutated.
type FolderMapping struct {
	Source      string
	AutoDiscard string
	byLabel     map[Label]string
}

func NewFolderMapping(source, autoDiscard, boo, simba, unclear string) FolderMapping {
	return FolderMapping{
		Source:      source,
		AutoDiscard: autoDiscard,
		byLabel: map[Label]string{
			LabelBoo:     boo,
			LabelSimba:   simba,
			LabelUnclear: unclear,
		},
	}
}

// For returns the destination prefix for a label. The label set is closed, so
// a miss means the caller bypassed ParseLabel.
func (m FolderMapping) For(label Label) (string, error) {
	prefix, ok := m.byLabel[label]
	if !ok {
		return "", ErrUnknownLabel
	}
	return prefix, nil
}
