package workflow

import (
	"testing"

	"github.com/terrydolan/catmon-img-tag/internal/domain"
)

func TestStats_StreakTracking(t *testing.T) {
	s := newStats()

	s.recordTag(domain.LabelBoo)
	s.recordTag(domain.LabelBoo)
	if s.Streak.Label != domain.LabelBoo || s.Streak.Count != 2 {
		t.Fatalf("streak = %+v, want boo x2", s.Streak)
	}

	s.recordTag(domain.LabelSimba)
	if s.Streak.Label != domain.LabelSimba || s.Streak.Count != 1 {
		t.Fatalf("streak = %+v, want simba x1 after switching labels", s.Streak)
	}

	s.recordUndo(domain.LabelSimba)
	if s.Streak.Count != 0 || s.Streak.Label != "" {
		t.Errorf("streak = %+v, want cleared after undoing the only simba tag", s.Streak)
	}
	if s.Tags[domain.LabelSimba] != 0 || s.Undos != 1 {
		t.Errorf("tags=%v undos=%d, want simba=0 undos=1", s.Tags, s.Undos)
	}
}

func TestStats_SnapshotIsACopy(t *testing.T) {
	s := newStats()
	s.recordTag(domain.LabelBoo)

	snap := s.snapshot()
	snap.Tags[domain.LabelBoo] = 99

	if s.Tags[domain.LabelBoo] != 1 {
		t.Error("mutating a snapshot must not affect the session stats")
	}
}
