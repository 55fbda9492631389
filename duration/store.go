package duration

import (
	"fmt"
	"sync"
	"time"

	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/clipshuffle/clipshuffle/library"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/metafates/gache"
)

// storeLifetime bounds how long a persisted duration is trusted.
const storeLifetime = 30 * 24 * time.Hour

type persisted interface {
	Get() (map[string]float64, bool, error)
	Set(map[string]float64) error
}

// store is the on-disk warm start for a Cache. A nil store is a no-op.
type store struct {
	mu      sync.Mutex
	backend persisted
	records map[string]float64
}

// Persist loads previously discovered durations from path and writes new ones through to it.
func (c *Cache) Persist(path string) error {
	backend := gache.New[map[string]float64](&gache.Options{
		Path:       path,
		Lifetime:   storeLifetime,
		FileSystem: &filesystem.GacheFs{},
	})

	s, err := openStore(backend)
	if err != nil {
		return fmt.Errorf("open duration store: %w", err)
	}

	c.mu.Lock()
	c.store = s
	c.mu.Unlock()
	return nil
}

func openStore(backend persisted) (*store, error) {
	records, expired, err := backend.Get()
	if err != nil {
		return nil, err
	}
	if expired || records == nil {
		records = make(map[string]float64)
	}
	return &store{backend: backend, records: records}, nil
}

// recordKey ties a record to the file's size and modification time, so a replaced file is probed again.
func recordKey(clip library.Clip) (string, bool) {
	info, err := filesystem.API().Stat(clip.Path)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d", clip.Path, info.Size(), info.ModTime().Unix()), true
}

func (s *store) lookup(clip library.Clip) (float64, bool) {
	if s == nil {
		return 0, false
	}
	key, ok := recordKey(clip)
	if !ok {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seconds, ok := s.records[key]
	return seconds, ok
}

func (s *store) save(clip library.Clip, seconds float64) {
	if s == nil {
		return
	}
	key, ok := recordKey(clip)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = seconds
	if err := s.backend.Set(s.records); err != nil {
		log.Warnf("persisting duration of %s: %v", clip, err)
	}
}

// Stored returns the number of persisted records, 0 when persistence is off.
func (c *Cache) Stored() int {
	c.mu.RLock()
	s := c.store
	c.mu.RUnlock()
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
