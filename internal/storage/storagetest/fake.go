// Package storagetest provides an in-memory ObjectStore for workflow and
// handler tests.
package storagetest

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/terrydolan/catmon-img-tag/internal/domain"
	"github.com/terrydolan/catmon-img-tag/internal/storage"
)

type object struct {
	data         []byte
	lastModified time.Time
}

// Fake is an in-memory object store with the same error semantics as the S3
// implementation: newest-first listing, ErrNotFound for missing keys,
// ErrMoveConflict when the destination name is taken.
type Fake struct {
	mu      sync.Mutex
	objects map[string]object

	// Error injection. ListErr fails every listing; FetchErrs and MoveErrs
	// fail operations on specific source keys.
	ListErr   error
	FetchErrs map[string]error
	MoveErrs  map[string]error
}

var _ storage.ObjectStore = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		objects:   make(map[string]object),
		FetchErrs: make(map[string]error),
		MoveErrs:  make(map[string]error),
	}
}

// Put stores an object.
func (f *Fake) Put(key string, data []byte, lastModified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = object{data: data, lastModified: lastModified}
}

// Delete removes an object, simulating a concurrent session's move.
func (f *Fake) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
}

// Has reports whether the key exists.
func (f *Fake) Has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// Keys returns all keys under prefix, sorted lexically.
func (f *Fake) Keys(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (f *Fake) ListRecent(ctx context.Context, prefix string, limit int) ([]storage.ObjectInfo, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var infos []storage.ObjectInfo
	for k, o := range f.objects {
		if !strings.HasPrefix(k, prefix) || k == prefix {
			continue
		}
		if strings.Contains(strings.TrimPrefix(k, prefix), "/") {
			continue
		}
		infos = append(infos, storage.ObjectInfo{
			Key:          k,
			Size:         int64(len(o.data)),
			LastModified: o.lastModified,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].LastModified.Equal(infos[j].LastModified) {
			return infos[i].LastModified.After(infos[j].LastModified)
		}
		return infos[i].Key < infos[j].Key
	})

	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

func (f *Fake) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	if err := f.FetchErrs[key]; err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("fetch %q: %w", key, domain.ErrNotFound)
	}
	return o.data, nil
}

func (f *Fake) Move(ctx context.Context, key, destPrefix string) (string, error) {
	if err := f.MoveErrs[key]; err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	destKey := destPrefix + path.Base(key)
	if _, exists := f.objects[destKey]; exists {
		return "", fmt.Errorf("move %q to %q: %w", key, destKey, domain.ErrMoveConflict)
	}

	o, ok := f.objects[key]
	if !ok {
		return "", fmt.Errorf("move %q: %w", key, domain.ErrNotFound)
	}

	f.objects[destKey] = o
	delete(f.objects, key)
	return destKey, nil
}
