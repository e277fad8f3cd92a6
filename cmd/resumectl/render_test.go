package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/assemble"
	"resume-builder/internal/capture"
	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
)

type countingCapturer struct {
	mu    sync.Mutex
	calls int
	fail  domain.TemplateKind
}

func (c *countingCapturer) Capture(_ context.Context, content capture.Content) (capture.Result, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.fail != "" && strings.Contains(string(content.HTML), `data-template="`+string(c.fail)+`"`) {
		return capture.Result{}, &domain.PipelineError{Kind: domain.KindCapture}
	}
	return capture.Result{PDF: []byte("%PDF-1.7 fake"), Pages: 1}, nil
}

type recordingDeliverer struct {
	mu    sync.Mutex
	names []string
}

func (r *recordingDeliverer) Deliver(_ context.Context, name string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	return nil
}

func newExporter(t *testing.T, c usecase.Capturer) *usecase.Exporter {
	t.Helper()
	a, err := assemble.New("", nil)
	require.NoError(t, err)
	return usecase.NewExporter(usecase.Config{Assembler: a, Capturer: c})
}

var jane = model.Resume{Name: "Jane Doe", SelectedTemplate: "classic"}

func TestRenderFiles_Single(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "cv.pdf")
	cc := &countingCapturer{}

	paths, err := renderFiles(context.Background(), newExporter(t, cc), nil, renderRequest{Resume: jane, Out: out})
	require.NoError(t, err)
	assert.Equal(t, []string{out}, paths)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Equal(t, 1, cc.calls)
}

func TestRenderFiles_AllTemplatesConcurrently(t *testing.T) {
	dir := t.TempDir()
	cc := &countingCapturer{}
	d := &recordingDeliverer{}

	paths, err := renderFiles(context.Background(), newExporter(t, cc), d, renderRequest{Resume: jane, Template: "all", Out: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "jane-doe-modern.pdf"),
		filepath.Join(dir, "jane-doe-classic.pdf"),
		filepath.Join(dir, "jane-doe-hybrid.pdf"),
	}, paths)
	assert.Equal(t, 3, cc.calls)
	assert.ElementsMatch(t, []string{"jane-doe-modern.pdf", "jane-doe-classic.pdf", "jane-doe-hybrid.pdf"}, d.names)
}

func TestRenderFiles_HTML(t *testing.T) {
	dir := t.TempDir()
	cc := &countingCapturer{}

	paths, err := renderFiles(context.Background(), newExporter(t, cc), nil, renderRequest{Resume: jane, Mode: "draft", Out: dir + string(os.PathSeparator), HTML: true})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "jane-doe-classic.html", filepath.Base(paths[0]))
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
	assert.Zero(t, cc.calls)
}

func TestRenderFiles_UnknownTemplateFailsBeforeCapture(t *testing.T) {
	cc := &countingCapturer{}
	_, err := renderFiles(context.Background(), newExporter(t, cc), nil, renderRequest{Resume: jane, Template: "glossy", Out: t.TempDir()})
	assert.True(t, errors.Is(err, domain.ErrInvalidTemplate))
	assert.Zero(t, cc.calls)
}

func TestRenderFiles_OneFailureKeepsOthers(t *testing.T) {
	dir := t.TempDir()
	cc := &countingCapturer{fail: domain.TemplateTwoColumn}

	paths, err := renderFiles(context.Background(), newExporter(t, cc), nil, renderRequest{Resume: jane, Template: "all", Out: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCaptureFailure)
	assert.NotContains(t, paths, filepath.Join(dir, "jane-doe-hybrid.pdf"))
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "a.pdf", outputPath("", "a.pdf", false))
	assert.Equal(t, filepath.Join(dir, "a.pdf"), outputPath(dir, "a.pdf", false))
	assert.Equal(t, "out/x.pdf", outputPath("out/x.pdf", "a.pdf", false))
	assert.Equal(t, filepath.Join("out", "a.pdf"), outputPath("out", "a.pdf", true))
}
