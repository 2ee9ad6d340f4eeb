package workflow

import (
	"github.com/terrydolan/catmon-img-tag/internal/domain"
)

// Streak tracks how many times in a row the same label was chosen.
type Streak struct {
	Label domain.Label `json:"label"`
	Count int          `json:"count"`
}

// Stats tallies one session's tagging activity.
type Stats struct {
	Tags         map[domain.Label]int `json:"tags"`
	AutoDiscards int                  `json:"auto_discards"`
	Undos        int                  `json:"undos"`
	Streak       Streak               `json:"streak"`
}

func newStats() Stats {
	tags := make(map[domain.Label]int, len(domain.Labels()))
	for _, l := range domain.Labels() {
		tags[l] = 0
	}
	return Stats{Tags: tags}
}

func (s *Stats) recordTag(label domain.Label) {
	s.Tags[label]++
	if s.Streak.Label == label {
		s.Streak.Count++
	} else {
		s.Streak = Streak{Label: label, Count: 1}
	}
}

func (s *Stats) recordUndo(label domain.Label) {
	s.Tags[label]--
	s.Undos++
	if s.Streak.Label == label && s.Streak.Count > 0 {
		s.Streak.Count--
		if s.Streak.Count == 0 {
			s.Streak = Streak{}
		}
	}
}

// snapshot returns a copy safe to hand out after the session unlocks.
func (s *Stats) snapshot() Stats {
	out := *s
	out.Tags = make(map[domain.Label]int, len(s.Tags))
	for k, v := range s.Tags {
		out.Tags[k] = v
	}
	return out
}
