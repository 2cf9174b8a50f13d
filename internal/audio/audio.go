// Package audio plays the short sound cue attached to a face.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"
)

// ErrNoCue is returned when a face has no sound file.
var ErrNoCue = errors.New("no sound cue")

const outputRate = beep.SampleRate(44100)

var extensions = []string{".wav", ".mp3", ".flac"}

// Player plays <face>.wav/.mp3/.flac from a directory. Missing files are
// silently skipped, like missing face images.
type Player struct {
	dir string
	log *zap.Logger

	mu       sync.Mutex
	initDone bool
}

// NewPlayer serves cues from dir. The speaker is opened on the first cue.
func NewPlayer(dir string, log *zap.Logger) *Player {
	return &Player{dir: dir, log: log.With(zap.String("component", "audio"))}
}

// Cue starts the sound for face without blocking. Decoding and playback
// happen on a separate goroutine.
func (p *Player) Cue(face string) {
	path, err := Find(p.dir, face)
	if err != nil {
		if !errors.Is(err, ErrNoCue) {
			p.log.Warn("sound cue lookup failed", zap.String("face", face), zap.Error(err))
		}
		return
	}
	go func() {
		if err := p.play(path); err != nil {
			p.log.Warn("sound cue failed", zap.String("path", path), zap.Error(err))
		}
	}()
}

// Find returns the cue file for face, trying each supported extension.
func Find(dir, face string) (string, error) {
	if face == "" || strings.ContainsAny(face, `/\`) || face == "." || face == ".." {
		return "", fmt.Errorf("cue %q: %w", face, ErrNoCue)
	}
	for _, ext := range extensions {
		path := filepath.Join(dir, face+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("cue %q in %s: %w", face, dir, ErrNoCue)
}

func (p *Player) play(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return errors.New("unsupported file type: " + filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return err
	}

	if err := p.initSpeaker(); err != nil {
		_ = streamer.Close()
		return err
	}

	var s beep.Streamer = streamer
	if format.SampleRate != outputRate {
		s = beep.Resample(4, format.SampleRate, outputRate, streamer)
	}

	speaker.Play(beep.Seq(s, beep.Callback(func() {
		_ = streamer.Close()
	})))
	p.log.Debug("sound cue playing", zap.String("path", path))
	return nil
}

func (p *Player) initSpeaker() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initDone {
		return nil
	}
	if err := speaker.Init(outputRate, outputRate.N(time.Second/20)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	p.initDone = true
	return nil
}
