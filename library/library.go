package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/clipshuffle/clipshuffle/log"
	"github.com/samber/lo"
)

// ErrNoVideosFound is returned when a library would contain no clips.
var ErrNoVideosFound = errors.New("no videos found")

// Library is the immutable, ordered set of clips discovered at startup.
type Library struct {
	root  string
	clips []Clip
}

// New builds a library from clips, dropping duplicates and sorting by path.
func New(root string, clips []Clip) (*Library, error) {
	clips = lo.UniqBy(clips, Clip.ID)
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoVideosFound, root)
	}

	sort.Slice(clips, func(i, j int) bool {
		return clips[i].Path < clips[j].Path
	})

	return &Library{root: root, clips: clips}, nil
}

// Scan walks root recursively and collects files whose extension matches one of extensions, case-insensitively.
func Scan(root string, extensions []string) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	abs = filepath.Clean(abs)

	info, err := filesystem.API().Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat library root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library root %s is not a directory", abs)
	}

	wanted := lo.SliceToMap(extensions, func(ext string) (string, struct{}) {
		return strings.ToLower(ext), struct{}{}
	})

	var clips []Clip
	err = filesystem.API().Walk(abs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warnf("scan %s: %v", path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		clips = append(clips, Clip{Path: filepath.Clean(path)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", abs, err)
	}

	log.Infof("scanned %s: %d clips", abs, len(clips))
	return New(abs, clips)
}

// Root returns the directory the library was scanned from.
func (l *Library) Root() string {
	return l.root
}

// Len returns the number of clips.
func (l *Library) Len() int {
	return len(l.clips)
}

// At returns the clip at index i.
func (l *Library) At(i int) Clip {
	return l.clips[i]
}

// Clips returns a copy of all clips in library order.
func (l *Library) Clips() []Clip {
	out := make([]Clip, len(l.clips))
	copy(out, l.clips)
	return out
}

// IndexOf returns the position of clip, or -1.
func (l *Library) IndexOf(clip Clip) int {
	_, idx, ok := lo.FindIndexOf(l.clips, func(c Clip) bool {
		return c.ID() == clip.ID()
	})
	if !ok {
		return -1
	}
	return idx
}
