// Package assets loads the avatar face images from a directory.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// ErrNotFound is returned when no image exists for a name.
var ErrNotFound = errors.New("image not found")

// Well-known face names.
const (
	DefaultFace = "eyes"
	WaitingFace = "waiting"
)

var extensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Library decodes, scales and caches face images by name.
type Library struct {
	dir  string
	size int
	log  *zap.Logger

	mu    sync.RWMutex
	cache map[string]image.Image
	gen   map[string]uint64 // bumped by Invalidate

	afterDecode func(name string)
}

// NewLibrary serves images from dir scaled to size x size pixels.
// A size of zero keeps the native resolution.
func NewLibrary(dir string, size int, log *zap.Logger) *Library {
	return &Library{
		dir:   dir,
		size:  size,
		log:   log.With(zap.String("component", "assets")),
		cache: make(map[string]image.Image),
		gen:   make(map[string]uint64),
	}
}

// Dir returns the asset directory.
func (l *Library) Dir() string { return l.dir }

// Load returns the image for name. Missing files, and names that are not a
// single path element, yield an error wrapping ErrNotFound.
func (l *Library) Load(name string) (image.Image, error) {
	if !validName(name) {
		return nil, fmt.Errorf("face %q: %w", name, ErrNotFound)
	}

	l.mu.RLock()
	img, ok := l.cache[name]
	gen := l.gen[name]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err := l.decode(name)
	if err != nil {
		return nil, err
	}
	if l.afterDecode != nil {
		l.afterDecode(name)
	}

	// a file change seen while decoding leaves the cache empty for the next Load
	l.mu.Lock()
	if l.gen[name] == gen {
		l.cache[name] = img
	}
	l.mu.Unlock()
	return img, nil
}

func (l *Library) decode(name string) (image.Image, error) {
	for _, ext := range extensions {
		path := filepath.Join(l.dir, name+ext)
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("open face %s: %w", path, err)
		}

		src, _, err := image.Decode(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode face %s: %w", path, err)
		}
		return scale(src, l.size), nil
	}
	return nil, fmt.Errorf("face %q in %s: %w", name, l.dir, ErrNotFound)
}

// Invalidate drops a cached image so the next Load re-reads it.
func (l *Library) Invalidate(name string) {
	l.mu.Lock()
	delete(l.cache, name)
	l.gen[name]++
	l.mu.Unlock()
}

// Watch invalidates cached images whenever their files change on disk.
// It blocks until ctx is done.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch assets: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch assets %s: %w", l.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := faceName(event.Name)
			if name == "" {
				continue
			}
			l.Invalidate(name)
			l.log.Debug("face changed on disk", zap.String("face", name), zap.String("op", event.Op.String()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("asset watcher error", zap.Error(err))
		}
	}
}

func faceName(path string) string {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	for _, known := range extensions {
		if ext == known {
			return strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	return ""
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func scale(src image.Image, size int) image.Image {
	if size <= 0 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
