// Package workflow implements the per-session tagging state machine: fetch
// the next untagged image from the source folder, filter out images too dark
// to tag, present the survivor, move it into the folder for the label the
// user picks, advance.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/terrydolan/catmon-img-tag/internal/domain"
	"github.com/terrydolan/catmon-img-tag/internal/imaging"
	"github.com/terrydolan/catmon-img-tag/internal/metrics"
	"github.com/terrydolan/catmon-img-tag/internal/storage"
)

// previousTag remembers the last successful tag so it can be undone (one
// step) and so a stale listing of the just-moved file is not re-presented.
type previousTag struct {
	sourceKey string
	destKey   string
	label     domain.Label
	print     *imaging.Fingerprint
}

// Session owns one user's view of the source folder: the listing cursor, the
// candidate being presented, the previous tag and the session stats. Each
// session is independent; nothing is shared between sessions except the
// object store itself. A mutex serializes the HTTP layer's calls, but at most
// one storage operation is ever in flight per session.
type Session struct {
	id        string
	store     storage.ObjectStore
	folders   domain.FolderMapping
	threshold float64
	listLimit int
	log       *zap.Logger

	mu           sync.Mutex
	state        State
	queue        []storage.ObjectInfo
	cursor       int
	current      *domain.Image
	currentPrint *imaging.Fingerprint
	prev         *previousTag
	lastErr      error
	stats        Stats
}

func NewSession(store storage.ObjectStore, folders domain.FolderMapping, threshold float64, listLimit int, log *zap.Logger) *Session {
	metrics.SessionsTotal.Inc()
	return &Session{
		id:        uuid.New().String(),
		store:     store,
		folders:   folders,
		threshold: threshold,
		listLimit: listLimit,
		log:       log,
		state:     StateIdle,
		stats:     newStats(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the failure that put the session into StateFailed, nil
// otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFailed {
		return nil
	}
	return s.lastErr
}

// Current returns the image being presented, if any.
func (s *Session) Current() (*domain.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.snapshot()
}

// Start lists the source folder newest-first and advances to the first
// taggable image. Terminal immediately with StateExhausted when the folder
// is empty.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return fmt.Errorf("cannot start session in state %q", s.state)
	}

	s.state = StateLoading
	infos, err := s.store.ListRecent(ctx, s.folders.Source, s.listLimit)
	if err != nil {
		return s.failLocked(err)
	}
	s.queue = infos
	s.cursor = 0

	return s.advanceLocked(ctx)
}

// Tag moves the presented image into the folder for label and advances to
// the next candidate. Also accepted in StateFailed while a candidate is
// retained, which is how a user manually retries after a storage failure.
func (s *Session) Tag(ctx context.Context, label domain.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	retrying := s.state == StateFailed && s.current != nil
	if s.state != StatePresenting && !retrying {
		return fmt.Errorf("no image awaiting a decision (state %q)", s.state)
	}

	s.state = StateDeciding
	destPrefix, err := s.folders.For(label)
	if err != nil {
		s.state = StatePresenting
		return err
	}

	s.state = StateMoving
	img := s.current
	destKey, err := s.store.Move(ctx, img.Key, destPrefix)
	if err != nil {
		return s.failLocked(err)
	}

	s.log.Info("Image tagged",
		zap.String("session", s.id),
		zap.String("key", img.Key),
		zap.String("label", label.String()),
		zap.String("destination", destKey))

	s.prev = &previousTag{
		sourceKey: img.Key,
		destKey:   destKey,
		label:     label,
		print:     s.currentPrint,
	}
	s.stats.recordTag(label)
	metrics.TagsTotal.WithLabelValues(label.String()).Inc()

	s.current = nil
	s.currentPrint = nil
	s.state = StateLoading
	return s.advanceLocked(ctx)
}

// Undo moves the previously tagged file back into the source folder and
// requeues it as the next candidate. One step only.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prev == nil {
		return domain.ErrNothingToUndo
	}

	restoredKey, err := s.store.Move(ctx, s.prev.destKey, s.folders.Source)
	if err != nil {
		// The previous tag is kept so undo can be retried manually.
		return err
	}

	s.log.Info("Tag undone",
		zap.String("session", s.id),
		zap.String("key", restoredKey),
		zap.String("label", s.prev.label.String()))

	s.stats.recordUndo(s.prev.label)
	metrics.UndosTotal.Inc()

	// Requeue the restored file so it is presented again next.
	restored := storage.ObjectInfo{Key: restoredKey, LastModified: time.Now()}
	s.queue = append(s.queue[:s.cursor], append([]storage.ObjectInfo{restored}, s.queue[s.cursor:]...)...)
	s.prev = nil

	// If the session had run dry, the restored file revives it.
	if s.state == StateExhausted {
		s.state = StateLoading
		return s.advanceLocked(ctx)
	}
	return nil
}

// Resume re-enters the workflow after a failure: if a candidate was retained
// it is presented again, otherwise loading continues from the cursor. When
// the initial listing itself failed, it is retried.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFailed {
		return fmt.Errorf("nothing to resume (state %q)", s.state)
	}
	s.lastErr = nil

	if s.current != nil {
		s.state = StatePresenting
		return nil
	}

	s.state = StateLoading
	if s.queue == nil {
		infos, err := s.store.ListRecent(ctx, s.folders.Source, s.listLimit)
		if err != nil {
			return s.failLocked(err)
		}
		s.queue = infos
		s.cursor = 0
	}
	return s.advanceLocked(ctx)
}

// advanceLocked pops candidates until one survives the darkness filter and
// the duplicate guard, presenting it; runs to StateExhausted when the queue
// is drained. Too-dark (or undecodable) images are moved to the auto-discard
// folder so they are never listed again. Caller holds the lock.
func (s *Session) advanceLocked(ctx context.Context) error {
	for s.cursor < len(s.queue) {
		info := s.queue[s.cursor]
		s.cursor++

		// Stale listing can still contain the file just tagged.
		if s.prev != nil && info.Key == s.prev.sourceKey {
			continue
		}

		data, err := s.store.FetchBytes(ctx, info.Key)
		if errors.Is(err, domain.ErrNotFound) {
			// Moved by another session between listing and fetch.
			s.log.Warn("Candidate vanished, skipping",
				zap.String("session", s.id),
				zap.String("key", info.Key))
			continue
		}
		if err != nil {
			// Step back so a Resume retries this candidate.
			s.cursor--
			return s.failLocked(err)
		}

		img, decodeErr := imaging.Decode(data)
		if decodeErr != nil || imaging.Brightness(img) <= s.threshold {
			if err := s.autoDiscardLocked(ctx, info.Key); err != nil {
				s.cursor--
				return err
			}
			continue
		}

		print := imaging.FingerprintImage(img)
		if s.prev != nil && print.Matches(s.prev.print) {
			s.log.Info("Skipping duplicate of previously tagged image",
				zap.String("session", s.id),
				zap.String("key", info.Key))
			continue
		}

		s.current = &domain.Image{
			Key:          info.Key,
			Name:         path.Base(info.Key),
			Size:         int64(len(data)),
			ContentType:  contentTypeFor(info.Key),
			CapturedAt:   imaging.CaptureTime(data, path.Base(info.Key), info.LastModified),
			LastModified: info.LastModified,
			Data:         data,
		}
		s.currentPrint = print
		s.state = StatePresenting
		return nil
	}

	s.current = nil
	s.currentPrint = nil
	s.state = StateExhausted
	s.log.Info("Source folder exhausted", zap.String("session", s.id))
	return nil
}

func (s *Session) autoDiscardLocked(ctx context.Context, key string) error {
	_, err := s.store.Move(ctx, key, s.folders.AutoDiscard)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return s.failLocked(err)
	}

	s.stats.AutoDiscards++
	metrics.AutoDiscardsTotal.Inc()
	s.log.Info("Auto-discarded dark image",
		zap.String("session", s.id),
		zap.String("key", key))
	return nil
}

func (s *Session) failLocked(err error) error {
	s.state = StateFailed
	s.lastErr = err
	s.log.Error("Workflow failed",
		zap.String("session", s.id),
		zap.Error(err))
	return err
}

func contentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
