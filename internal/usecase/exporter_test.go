package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/assemble"
	"resume-builder/internal/capture"
	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/readiness"
)

type fakeCapturer struct {
	mu       sync.Mutex
	contents []capture.Content
	err      error
}

func (f *fakeCapturer) Capture(_ context.Context, c capture.Content) (capture.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, c)
	if f.err != nil {
		return capture.Result{}, f.err
	}
	return capture.Result{PDF: []byte("%PDF-1.7 fake"), Pages: 1}, nil
}

type memStore struct {
	mu   sync.Mutex
	objs map[string][]byte
	err  error
}

func (m *memStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.objs == nil {
		m.objs = map[string][]byte{}
	}
	m.objs[key] = data
	return key, nil
}

func newExporter(t *testing.T, cfg Config) *Exporter {
	t.Helper()
	a, err := assemble.New("", nil)
	require.NoError(t, err)
	cfg.Assembler = a
	return NewExporter(cfg)
}

var jane = model.Resume{
	Name:       "Jane Doe",
	Experience: []model.Experience{{Title: "Engineer", Company: "Acme", StartDate: "Jan 2020"}},
}

func TestNewJob_TemplateSelection(t *testing.T) {
	e := newExporter(t, Config{Capturer: &fakeCapturer{}})

	job, err := e.NewJob("", "", domain.ModeFinal, model.Resume{})
	require.NoError(t, err)
	assert.Equal(t, domain.TemplatePrimary, job.Template)
	assert.Equal(t, domain.ModeFinal, job.Mode)

	job, err = e.NewJob(" ", "draft", domain.ModeFinal, model.Resume{SelectedTemplate: "hybrid"})
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateTwoColumn, job.Template)
	assert.Equal(t, domain.ModeDraft, job.Mode)

	job, err = e.NewJob("secondary", "", domain.ModeDraft, model.Resume{SelectedTemplate: "hybrid"})
	require.NoError(t, err)
	assert.Equal(t, domain.TemplateSecondary, job.Template)
}

func TestNewJob_UnknownTemplateNeverReachesCapture(t *testing.T) {
	fc := &fakeCapturer{}
	e := newExporter(t, Config{Capturer: fc})

	_, err := e.NewJob("fancy", "", domain.ModeFinal, jane)
	assert.ErrorIs(t, err, domain.ErrInvalidTemplate)

	_, err = e.NewJob("", "", domain.ModeFinal, model.Resume{SelectedTemplate: "glossy"})
	assert.ErrorIs(t, err, domain.ErrInvalidTemplate)
	assert.Empty(t, fc.contents)
}

func TestNewJob_UnknownMode(t *testing.T) {
	e := newExporter(t, Config{Capturer: &fakeCapturer{}})
	_, err := e.NewJob("modern", "sepia", domain.ModeFinal, jane)
	assert.Error(t, err)
}

func TestExportPDF_ContentStrategy(t *testing.T) {
	fc := &fakeCapturer{}
	store := &memStore{}
	e := newExporter(t, Config{Capturer: fc, Store: store})

	job := domain.NewRenderJob(domain.TemplatePrimary, domain.ModeFinal)
	out, err := e.ExportPDF(context.Background(), job, jane)
	require.NoError(t, err)

	assert.Equal(t, "jane-doe-modern.pdf", out.FileName)
	assert.Equal(t, 1, out.Pages)
	assert.Equal(t, "jobs/"+job.ID.String()+"/resume.html", out.HTMLKey)
	assert.Equal(t, "jobs/"+job.ID.String()+"/jane-doe-modern.pdf", out.PDFKey)
	assert.Equal(t, out.PDF, store.objs[out.PDFKey])

	require.Len(t, fc.contents, 1)
	html := string(fc.contents[0].HTML)
	assert.Contains(t, html, "EXPERIENCE")
	assert.Contains(t, html, "Jan 2020 – Present")
	assert.NotContains(t, html, "EDUCATION")
	assert.Equal(t, job.ID.String(), fc.contents[0].JobID)
}

func TestExportPDF_RouteStrategy(t *testing.T) {
	fc := &fakeCapturer{}
	e := newExporter(t, Config{Capturer: fc, Strategy: domain.InjectRoute, PublicURL: "http://127.0.0.1:8080/"})

	job, err := e.NewJob("classic", "", domain.ModeFinal, jane)
	require.NoError(t, err)
	out, err := e.ExportPDF(context.Background(), job, jane)
	require.NoError(t, err)
	assert.Empty(t, out.HTMLKey)

	require.Len(t, fc.contents, 1)
	c := fc.contents[0]
	assert.Equal(t, domain.InjectRoute, c.Strategy)
	u, err := url.Parse(c.URL)
	require.NoError(t, err)
	assert.Equal(t, "/print", u.Path)
	assert.Equal(t, "classic", u.Query().Get("template"))
	assert.Equal(t, "final", u.Query().Get("mode"))

	var snap model.Resume
	require.NoError(t, json.Unmarshal([]byte(c.Storage[readiness.StorageSnapshotKey]), &snap))
	assert.Equal(t, "Jane Doe", snap.Name)
}

func TestExportPDF_RouteStrategyNeedsPublicURL(t *testing.T) {
	fc := &fakeCapturer{}
	e := newExporter(t, Config{Capturer: fc, Strategy: domain.InjectRoute})
	job, err := e.NewJob("", "", domain.ModeFinal, jane)
	require.NoError(t, err)

	_, err = e.ExportPDF(context.Background(), job, jane)
	assert.ErrorIs(t, err, domain.ErrNavigation)
	assert.Empty(t, fc.contents)
}

func TestExportPDF_PropagatesPipelineErrorsWithoutRetry(t *testing.T) {
	fc := &fakeCapturer{err: &domain.PipelineError{Kind: domain.KindReadinessTimeout, State: "AwaitingReadiness"}}
	e := newExporter(t, Config{Capturer: fc})

	_, err := e.ExportPDF(context.Background(), domain.NewRenderJob(domain.TemplatePrimary, domain.ModeFinal), jane)
	assert.ErrorIs(t, err, domain.ErrReadinessTimeout)
	assert.Len(t, fc.contents, 1)
}

func TestExportPDF_StoreFailureIsNotFatal(t *testing.T) {
	e := newExporter(t, Config{Capturer: &fakeCapturer{}, Store: &memStore{err: errors.New("disk full")}})

	out, err := e.ExportPDF(context.Background(), domain.NewRenderJob(domain.TemplateTwoColumn, domain.ModeFinal), jane)
	require.NoError(t, err)
	assert.Empty(t, out.HTMLKey)
	assert.Empty(t, out.PDFKey)
	assert.NotEmpty(t, out.PDF)
}

func TestRenderHTML_DraftTitleUsesPlaceholderName(t *testing.T) {
	e := newExporter(t, Config{Capturer: &fakeCapturer{}})
	html, err := e.RenderHTML(context.Background(), domain.NewRenderJob(domain.TemplatePrimary, domain.ModeDraft), model.Resume{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>Your Name — Resume</title>")
}

func TestFragment(t *testing.T) {
	e := newExporter(t, Config{Capturer: &fakeCapturer{}})
	f, err := e.Fragment(domain.NewRenderJob(domain.TemplateSecondary, domain.ModeFinal), jane)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe — Resume", f.Title)
	assert.True(t, strings.HasPrefix(f.HTML, "<article"))
	assert.Contains(t, f.CSS, "@page { size: A4; margin: 12mm; }")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "jane-doe-hybrid.pdf", FileName("  Jane  Doe! ", domain.TemplateTwoColumn))
	assert.Equal(t, "resume-classic.pdf", FileName("", domain.TemplateSecondary))
}

func TestExportPDF_ConcurrentJobsAreIndependent(t *testing.T) {
	fc := &fakeCapturer{}
	e := newExporter(t, Config{Capturer: fc})

	var wg sync.WaitGroup
	for _, kind := range domain.Templates {
		wg.Add(1)
		go func(kind domain.TemplateKind) {
			defer wg.Done()
			_, err := e.ExportPDF(context.Background(), domain.NewRenderJob(kind, domain.ModeFinal), jane)
			assert.NoError(t, err)
		}(kind)
	}
	wg.Wait()

	ids := map[string]bool{}
	for _, c := range fc.contents {
		ids[c.JobID] = true
	}
	assert.Len(t, ids, len(domain.Templates))
}
