package scene

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iburimskiy/aurora/internal/assets"
	"github.com/iburimskiy/aurora/internal/status"
)

type recordingSurface struct {
	faces   []string
	shown   int
	hidden  int
	outputs []string
}

func (r *recordingSurface) SetFace(name string, _ image.Image) { r.faces = append(r.faces, name) }
func (r *recordingSurface) ShowIndicator()                     { r.shown++ }
func (r *recordingSurface) HideIndicator()                     { r.hidden++ }
func (r *recordingSurface) SetOutput(text string)              { r.outputs = append(r.outputs, text) }

func (r *recordingSurface) current() string {
	if len(r.faces) == 0 {
		return ""
	}
	return r.faces[len(r.faces)-1]
}

type fakeFaces map[string]bool

func (f fakeFaces) Load(name string) (image.Image, error) {
	if !f[name] {
		return nil, fmt.Errorf("face %q: %w", name, assets.ErrNotFound)
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func str(s string) *string { return &s }

func newPresenter(t *testing.T, faces fakeFaces) (*Presenter, *recordingSurface) {
	t.Helper()
	surface := &recordingSurface{}
	p := NewPresenter(surface, faces, zap.NewNop())
	require.NoError(t, p.ShowDefault())
	return p, surface
}

var allFaces = fakeFaces{assets.DefaultFace: true, assets.WaitingFace: true, "happy": true, "sad": true}

func TestApply_FacePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		faces fakeFaces
		st    status.ExternalStatus
		want  string
	}{
		{"idle shows default", allFaces, status.ExternalStatus{}, assets.DefaultFace},
		{"emotion shown", allFaces, status.ExternalStatus{Emotion: str("happy")}, "happy"},
		{"waiting beats emotion", allFaces, status.ExternalStatus{Emotion: str("happy"), Waiting: true}, assets.WaitingFace},
		{"waiting without emotion", allFaces, status.ExternalStatus{Waiting: true}, assets.WaitingFace},
		{"missing emotion keeps current", allFaces, status.ExternalStatus{Emotion: str("confused")}, assets.DefaultFace},
		{
			"missing waiting falls back to emotion",
			fakeFaces{assets.DefaultFace: true, "happy": true},
			status.ExternalStatus{Emotion: str("happy"), Waiting: true},
			"happy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, surface := newPresenter(t, tt.faces)
			p.Apply(tt.st)
			assert.Equal(t, tt.want, p.Face())
			assert.Equal(t, tt.want, surface.current())
		})
	}
}

func TestApply_MissingEmotionKeepsPreviousEmotion(t *testing.T) {
	p, _ := newPresenter(t, allFaces)

	p.Apply(status.ExternalStatus{Emotion: str("sad")})
	require.Equal(t, "sad", p.Face())

	p.Apply(status.ExternalStatus{Emotion: str("confused")})
	assert.Equal(t, "sad", p.Face())
}

func TestApply_WaitingClearedRestoresDefault(t *testing.T) {
	p, _ := newPresenter(t, allFaces)

	p.Apply(status.ExternalStatus{Waiting: true})
	require.Equal(t, assets.WaitingFace, p.Face())

	p.Apply(status.ExternalStatus{})
	assert.Equal(t, assets.DefaultFace, p.Face())
}

func TestApply_IndicatorLifecycle(t *testing.T) {
	p, surface := newPresenter(t, allFaces)

	p.Apply(status.ExternalStatus{Processing: true})
	p.Apply(status.ExternalStatus{Processing: true, Output: str("thinking")})
	assert.True(t, p.IndicatorShown())
	assert.Equal(t, 1, surface.shown)

	p.Apply(status.ExternalStatus{})
	p.Apply(status.ExternalStatus{Output: str("done")})
	assert.False(t, p.IndicatorShown())
	assert.Equal(t, 1, surface.shown)
	assert.Equal(t, 1, surface.hidden)
}

func TestApply_Idempotent(t *testing.T) {
	p, surface := newPresenter(t, allFaces)
	st := status.ExternalStatus{Processing: true, Emotion: str("happy"), Output: str("hello")}

	p.Apply(st)
	faces, outputs, shown := len(surface.faces), len(surface.outputs), surface.shown

	p.Apply(st)
	p.Apply(st)
	assert.Len(t, surface.faces, faces)
	assert.Len(t, surface.outputs, outputs)
	assert.Equal(t, shown, surface.shown)
}

func TestApply_OutputCreatedThenUpdated(t *testing.T) {
	p, surface := newPresenter(t, allFaces)

	p.Apply(status.ExternalStatus{})
	assert.Empty(t, surface.outputs)

	p.Apply(status.ExternalStatus{Output: str("Hello")})
	p.Apply(status.ExternalStatus{Output: str("Hello again")})
	p.Apply(status.ExternalStatus{})
	assert.Equal(t, []string{"Hello", "Hello again"}, surface.outputs)
}

func TestApply_OnFaceChange(t *testing.T) {
	p, _ := newPresenter(t, allFaces)
	var got []string
	p.OnFaceChange(func(name string) { got = append(got, name) })

	p.Apply(status.ExternalStatus{Emotion: str("happy")})
	p.Apply(status.ExternalStatus{Emotion: str("happy")})
	p.Apply(status.ExternalStatus{Waiting: true})
	assert.Equal(t, []string{"happy", assets.WaitingFace}, got)
}

type brokenFaces struct{ fakeFaces }

func (b brokenFaces) Load(name string) (image.Image, error) {
	if name == "happy" {
		return nil, errors.New("decode face happy.png: unexpected EOF")
	}
	return b.fakeFaces.Load(name)
}

func TestApply_BrokenImageKeepsCurrent(t *testing.T) {
	surface := &recordingSurface{}
	p := NewPresenter(surface, brokenFaces{allFaces}, zap.NewNop())
	require.NoError(t, p.ShowDefault())

	p.Apply(status.ExternalStatus{Emotion: str("happy")})
	assert.Equal(t, assets.DefaultFace, p.Face())
}

func TestShowDefault_Missing(t *testing.T) {
	p := NewPresenter(&recordingSurface{}, fakeFaces{}, zap.NewNop())
	assert.ErrorIs(t, p.ShowDefault(), assets.ErrNotFound)
}
