package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/providers"
	"github.com/stretchr/testify/require"
)

type fakeIdeaGenerator struct {
	drafts []IdeaDraft
	err    error
	got    providers.IdeaParams
	calls  int
}

func (f *fakeIdeaGenerator) GenerateIdeas(_ context.Context, p providers.IdeaParams) ([]IdeaDraft, error) {
	f.calls++
	f.got = p
	return f.drafts, f.err
}

type fakeImageGenerator struct {
	url   string
	err   error
	got   ImageParams
	calls int
}

func (f *fakeImageGenerator) Name() string { return "fake" }

func (f *fakeImageGenerator) GenerateImage(_ context.Context, p ImageParams) (string, error) {
	f.calls++
	f.got = p
	return f.url, f.err
}

type fakeAnalyzer struct {
	text string
	err  error
}

func (f *fakeAnalyzer) AnalyzeImage(context.Context, []byte, string) (string, error) {
	return f.text, f.err
}

type fakeStore struct {
	mu   sync.Mutex
	url  string
	err  error
	data [][]byte
	mime []string
}

func (f *fakeStore) Store(_ context.Context, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append(f.data, data)
	f.mime = append(f.mime, contentType)
	return f.url, f.err
}

type fakeDispatcher struct {
	status models.JobStatus
	err    error
	jobs   []string
}

func (f *fakeDispatcher) Dispatch(_ context.Context, jobID string) (models.JobStatus, error) {
	f.jobs = append(f.jobs, jobID)
	return f.status, f.err
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
