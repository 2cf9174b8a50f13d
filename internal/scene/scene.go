// Package scene decides which visual elements the avatar shows for a status.
package scene

import (
	"errors"
	"image"

	"go.uber.org/zap"

	"github.com/iburimskiy/aurora/internal/assets"
	"github.com/iburimskiy/aurora/internal/status"
)

// Surface is the drawable side of the avatar.
type Surface interface {
	SetFace(name string, img image.Image)
	ShowIndicator()
	HideIndicator()
	SetOutput(text string)
}

// Faces resolves a face name to an image.
type Faces interface {
	Load(name string) (image.Image, error)
}

// Presenter applies status changes to a Surface, touching only the
// elements whose state actually changes.
type Presenter struct {
	surface Surface
	faces   Faces
	log     *zap.Logger

	face      string
	indicator bool
	output    *string
	onFace    func(name string)
}

// NewPresenter starts with no face shown.
func NewPresenter(surface Surface, faces Faces, log *zap.Logger) *Presenter {
	return &Presenter{
		surface: surface,
		faces:   faces,
		log:     log.With(zap.String("component", "scene")),
	}
}

// OnFaceChange registers a hook fired after every face swap.
func (p *Presenter) OnFaceChange(fn func(name string)) { p.onFace = fn }

// Face returns the name of the face currently on the surface.
func (p *Presenter) Face() string { return p.face }

// IndicatorShown reports whether the processing indicator is up.
func (p *Presenter) IndicatorShown() bool { return p.indicator }

// ShowDefault puts the default face up. It fails when the default image
// cannot be loaded, which is fatal at startup.
func (p *Presenter) ShowDefault() error {
	img, err := p.faces.Load(assets.DefaultFace)
	if err != nil {
		return err
	}
	p.swap(assets.DefaultFace, img)
	return nil
}

// Apply reconciles the surface with st: the indicator follows processing,
// output text is created or updated when present, and the face follows the
// precedence waiting > emotion > default. Faces that fail to load leave the
// current one in place.
func (p *Presenter) Apply(st status.ExternalStatus) {
	switch {
	case st.Processing && !p.indicator:
		p.surface.ShowIndicator()
		p.indicator = true
	case !st.Processing && p.indicator:
		p.surface.HideIndicator()
		p.indicator = false
	}

	name, img := p.face, image.Image(nil)
	if st.Emotion != nil {
		if i, ok := p.load(*st.Emotion); ok {
			name, img = *st.Emotion, i
		}
	}

	if st.Output != nil && (p.output == nil || *p.output != *st.Output) {
		text := *st.Output
		p.surface.SetOutput(text)
		p.output = &text
	}

	switch {
	case st.Waiting:
		if i, ok := p.load(assets.WaitingFace); ok {
			name, img = assets.WaitingFace, i
		}
	case st.Emotion == nil:
		if i, ok := p.load(assets.DefaultFace); ok {
			name, img = assets.DefaultFace, i
		}
	}

	if img != nil && name != p.face {
		p.swap(name, img)
	}
}

func (p *Presenter) swap(name string, img image.Image) {
	p.surface.SetFace(name, img)
	p.face = name
	p.log.Debug("face swapped", zap.String("face", name))
	if p.onFace != nil {
		p.onFace(name)
	}
}

func (p *Presenter) load(name string) (image.Image, bool) {
	img, err := p.faces.Load(name)
	if err == nil {
		return img, true
	}
	if errors.Is(err, assets.ErrNotFound) {
		p.log.Debug("face missing, keeping current", zap.String("face", name))
	} else {
		p.log.Warn("face unusable, keeping current", zap.String("face", name), zap.Error(err))
	}
	return nil, false
}
