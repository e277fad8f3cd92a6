package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"resume-builder/internal/assemble"
	"resume-builder/internal/capture"
	"resume-builder/internal/domain"
	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/internal/placeholder"
	"resume-builder/internal/readiness"
)

type Capturer interface {
	Capture(ctx context.Context, c capture.Content) (capture.Result, error)
}

// ArtifactStore keeps copies of what a job produced. Optional.
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Export is a finished PDF job.
type Export struct {
	JobID    string
	Template domain.TemplateKind
	PDF      []byte
	Pages    int
	FileName string
	HTMLKey  string
	PDFKey   string
	Elapsed  time.Duration
}

// Config wires an Exporter.
type Config struct {
	Assembler       *assemble.Assembler
	Resolver        *placeholder.Resolver
	Capturer        Capturer
	Store           ArtifactStore
	DefaultTemplate domain.TemplateKind
	Strategy        domain.InjectStrategy
	// PublicURL is where the print route is reachable from the browser.
	// Required for the route strategy.
	PublicURL string
	Logger    *slog.Logger
}

// Exporter runs render jobs: resolve, render, assemble, capture, store.
// It holds no per-job state and is safe for concurrent use.
type Exporter struct {
	assembler       *assemble.Assembler
	resolver        *placeholder.Resolver
	capturer        Capturer
	store           ArtifactStore
	defaultTemplate domain.TemplateKind
	strategy        domain.InjectStrategy
	publicURL       string
	logger          *slog.Logger
}

func NewExporter(cfg Config) *Exporter {
	e := &Exporter{
		assembler:       cfg.Assembler,
		resolver:        cfg.Resolver,
		capturer:        cfg.Capturer,
		store:           cfg.Store,
		defaultTemplate: cfg.DefaultTemplate,
		strategy:        cfg.Strategy,
		publicURL:       strings.TrimRight(cfg.PublicURL, "/"),
		logger:          cfg.Logger,
	}
	if e.resolver == nil {
		e.resolver = placeholder.New(placeholder.Default)
	}
	if e.defaultTemplate == "" {
		e.defaultTemplate = domain.TemplatePrimary
	}
	if e.strategy == "" {
		e.strategy = domain.InjectContent
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// NewJob validates the selectors before any browser work. A blank template
// selector falls back to the snapshot's own choice, then to the default.
func (e *Exporter) NewJob(templateSel, modeSel string, defMode domain.ViewMode, r model.Resume) (domain.RenderJob, error) {
	sel := templateSel
	if model.Blank(sel) {
		sel = r.SelectedTemplate
	}
	kind := e.defaultTemplate
	if !model.Blank(sel) {
		k, err := domain.ParseTemplate(sel)
		if err != nil {
			return domain.RenderJob{}, err
		}
		kind = k
	}
	mode, err := domain.ParseViewMode(modeSel, defMode)
	if err != nil {
		return domain.RenderJob{}, err
	}
	job := domain.NewRenderJob(kind, mode)
	job.Strategy = e.strategy
	return job, nil
}

func (e *Exporter) jobLogger(job domain.RenderJob) *slog.Logger {
	return e.logger.With("job_id", job.ID.String(), "template", string(job.Template), "mode", string(job.Mode))
}

func (e *Exporter) tree(job domain.RenderJob, r model.Resume) (*layout.Node, string, error) {
	root, err := layout.Render(job.Template, r, e.resolver, job.Mode)
	if err != nil {
		return nil, "", err
	}
	name := r.Name
	if job.Mode == domain.ModeDraft && model.Blank(name) {
		name = e.resolver.Catalog().Name
	}
	return root, assemble.Title(name), nil
}

// RenderHTML runs the pipeline up to the assembler.
func (e *Exporter) RenderHTML(_ context.Context, job domain.RenderJob, r model.Resume) ([]byte, error) {
	root, title, err := e.tree(job, r)
	if err != nil {
		return nil, err
	}
	return e.assembler.Document(job.Template, root, title)
}

// Fragment returns the assembled pieces the print route mounts.
func (e *Exporter) Fragment(job domain.RenderJob, r model.Resume) (assemble.Fragment, error) {
	root, title, err := e.tree(job, r)
	if err != nil {
		return assemble.Fragment{}, err
	}
	return e.assembler.Fragment(job.Template, root, title)
}

// ExportPDF runs the full pipeline. There are no retries; a failed job
// returns a *domain.PipelineError and the caller decides what to do.
func (e *Exporter) ExportPDF(ctx context.Context, job domain.RenderJob, r model.Resume) (Export, error) {
	log := e.jobLogger(job)
	start := time.Now()
	out := Export{JobID: job.ID.String(), Template: job.Template, FileName: FileName(r.Name, job.Template)}

	content := capture.Content{JobID: out.JobID, Strategy: job.Strategy}
	switch job.Strategy {
	case domain.InjectRoute:
		c, err := e.routeContent(job, r)
		if err != nil {
			return Export{}, err
		}
		content.URL, content.Storage = c.URL, c.Storage
	default:
		html, err := e.RenderHTML(ctx, job, r)
		if err != nil {
			return Export{}, err
		}
		content.HTML = html
		out.HTMLKey = e.save(ctx, log, job, "resume.html", "text/html; charset=utf-8", html)
	}

	res, err := e.capturer.Capture(ctx, content)
	if err != nil {
		log.Error("export failed", "kind", string(domain.KindOf(err)), "error", err)
		return Export{}, err
	}
	out.PDF, out.Pages = res.PDF, res.Pages
	out.PDFKey = e.save(ctx, log, job, out.FileName, "application/pdf", res.PDF)
	out.Elapsed = time.Since(start)
	log.Info("export done", "bytes", len(res.PDF), "pages", res.Pages, "elapsed", out.Elapsed)
	return out, nil
}

func (e *Exporter) routeContent(job domain.RenderJob, r model.Resume) (capture.Content, error) {
	if e.publicURL == "" {
		return capture.Content{}, &domain.PipelineError{
			Kind: domain.KindNavigation, State: "Idle",
			Cause: fmt.Errorf("route strategy needs a public url"),
		}
	}
	snap, err := json.Marshal(r)
	if err != nil {
		return capture.Content{}, fmt.Errorf("encode snapshot: %w", err)
	}
	q := url.Values{"template": {string(job.Template)}, "mode": {string(job.Mode)}}
	return capture.Content{
		URL: e.publicURL + "/print?" + q.Encode(),
		Storage: map[string]string{
			readiness.StorageSnapshotKey: string(snap),
			readiness.StorageTemplateKey: string(job.Template),
			readiness.StorageModeKey:     string(job.Mode),
		},
	}, nil
}

// save stores an artifact. Failures are logged and never fail the job.
func (e *Exporter) save(ctx context.Context, log *slog.Logger, job domain.RenderJob, name, contentType string, data []byte) string {
	if e.store == nil {
		return ""
	}
	key, err := e.store.Put(ctx, path.Join("jobs", job.ID.String(), name), contentType, data)
	if err != nil {
		log.Warn("artifact store failed (non-fatal)", "name", name, "error", err)
		return ""
	}
	return key
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// FileName derives a download name such as jane-doe-modern.pdf.
func FileName(name string, kind domain.TemplateKind) string {
	slug := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "resume"
	}
	return slug + "-" + string(kind) + ".pdf"
}
