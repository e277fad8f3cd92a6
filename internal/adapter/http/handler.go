package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"resume-builder/internal/accesskey"
	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/assemble"
	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
)

// Pipeline is the part of *usecase.Exporter the handlers drive.
type Pipeline interface {
	NewJob(templateSel, modeSel string, defMode domain.ViewMode, r model.Resume) (domain.RenderJob, error)
	RenderHTML(ctx context.Context, job domain.RenderJob, r model.Resume) ([]byte, error)
	Fragment(job domain.RenderJob, r model.Resume) (assemble.Fragment, error)
	ExportPDF(ctx context.Context, job domain.RenderJob, r model.Resume) (usecase.Export, error)
}

type SnapshotStore interface {
	Save(ctx context.Context, s *repository.Snapshot) error
	Get(ctx context.Context, id uuid.UUID) (*repository.Snapshot, error)
}

type KeyVerifier interface {
	Verify(token string) (*accesskey.Claims, error)
}

// Deliverer hands a finished PDF to a chat channel.
type Deliverer interface {
	Deliver(ctx context.Context, fileName string, pdf []byte) error
}

type Handler struct {
	pipeline Pipeline
	repo     SnapshotStore
	keys     KeyVerifier
	delivery Deliverer
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler wires the handlers. A nil keys verifier leaves the gated routes
// open.
func NewHandler(p Pipeline, r SnapshotStore, keys KeyVerifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{pipeline: p, repo: r, keys: keys, validate: validator.New(), logger: logger}
}

// WithDelivery enables ?deliver=true on the export routes.
func (h *Handler) WithDelivery(d Deliverer) *Handler {
	h.delivery = d
	return h
}

// NewApp builds a fiber app with the routes registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "resume-builder",
		BodyLimit:             8 * 1024 * 1024,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	h.Register(app)
	return app
}

func (h *Handler) Register(app fiber.Router) {
	app.Get("/healthz", h.Health)
	app.Post("/api/preview", h.Preview)
	app.Get("/print", h.PrintShell)
	app.Post("/print/fragment", h.PrintFragment)

	app.Post("/api/export", h.RequireKey, h.Export)
	app.Put("/api/resumes/:id", h.RequireKey, h.SaveSnapshot)
	app.Get("/api/resumes/:id", h.RequireKey, h.GetSnapshot)
	app.Get("/api/resumes/:id/pdf", h.RequireKey, h.ExportSnapshot)
}

type renderQuery struct {
	Template string `query:"template" validate:"omitempty,max=32"`
	Mode     string `query:"mode" validate:"omitempty,oneof=draft final preview export"`
}

type idParam struct {
	ID string `validate:"required,uuid"`
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// RequireKey accepts "Authorization: Bearer <key>" or ?key=.
func (h *Handler) RequireKey(c *fiber.Ctx) error {
	if h.keys == nil {
		return c.Next()
	}
	token := c.Query("key")
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if token == "" {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "missing access key")
	}
	claims, err := h.keys.Verify(token)
	if err != nil {
		h.logger.Debug("access key rejected", "path", c.Path(), "error", err)
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "invalid or expired access key")
	}
	c.Locals("subject", claims.Subject)
	return c.Next()
}

func (h *Handler) query(c *fiber.Ctx) (renderQuery, error) {
	var q renderQuery
	if err := c.QueryParser(&q); err != nil {
		return q, err
	}
	return q, h.validate.Struct(q)
}

// decode reads a resume snapshot from the body. Structural problems degrade
// to warnings; only a body that is not a JSON object is rejected.
func (h *Handler) decode(c *fiber.Ctx) (model.Resume, bool, error) {
	r, warnings, err := model.DecodeSnapshot(c.Body())
	if err != nil {
		return r, false, jsonError(c, fiber.StatusBadRequest, "invalid_payload", err.Error())
	}
	if len(warnings) > 0 {
		h.logger.Debug("snapshot decoded with warnings", "path", c.Path(), "warnings", warnings)
		c.Set("X-Resume-Warnings", strconv.Itoa(len(warnings)))
	}
	if issues := r.Issues(); len(issues) > 0 {
		h.logger.Debug("snapshot has rule violations", "path", c.Path(), "issues", issues)
		c.Set("X-Resume-Issues", strconv.Itoa(len(issues)))
	}
	return r, true, nil
}

func (h *Handler) job(c *fiber.Ctx, templateSel string, def domain.ViewMode, r model.Resume) (domain.RenderJob, bool, error) {
	q, err := h.query(c)
	if err != nil {
		return domain.RenderJob{}, false, jsonError(c, fiber.StatusBadRequest, "invalid_query", err.Error())
	}
	if templateSel == "" {
		templateSel = q.Template
	}
	job, err := h.pipeline.NewJob(templateSel, q.Mode, def, r)
	if err != nil {
		return job, false, h.pipelineError(c, err)
	}
	return job, true, nil
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	r, ok, err := h.decode(c)
	if !ok {
		return err
	}
	job, ok, err := h.job(c, "", domain.ModeDraft, r)
	if !ok {
		return err
	}
	html, err := h.pipeline.RenderHTML(c.UserContext(), job, r)
	if err != nil {
		return h.pipelineError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(html)
}

func (h *Handler) Export(c *fiber.Ctx) error {
	r, ok, err := h.decode(c)
	if !ok {
		return err
	}
	return h.export(c, "", r)
}

func (h *Handler) export(c *fiber.Ctx, templateSel string, r model.Resume) error {
	job, ok, err := h.job(c, templateSel, domain.ModeFinal, r)
	if !ok {
		return err
	}
	out, err := h.pipeline.ExportPDF(c.UserContext(), job, r)
	if err != nil {
		return h.pipelineError(c, err)
	}
	if h.delivery != nil && c.QueryBool("deliver") {
		// The caller still gets the PDF when the upload fails.
		if err := h.delivery.Deliver(c.UserContext(), out.FileName, out.PDF); err != nil {
			h.logger.Warn("delivery failed", "job_id", out.JobID, "error", err)
			c.Set("X-Delivered", "false")
		} else {
			c.Set("X-Delivered", "true")
		}
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", out.FileName))
	c.Set("X-Job-ID", out.JobID)
	c.Set("X-PDF-Pages", strconv.Itoa(out.Pages))
	return c.Send(out.PDF)
}

func (h *Handler) PrintShell(c *fiber.Ctx) error {
	shell, err := assemble.PrintShell()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal", err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(shell)
}

func (h *Handler) PrintFragment(c *fiber.Ctx) error {
	r, ok, err := h.decode(c)
	if !ok {
		return err
	}
	job, ok, err := h.job(c, "", domain.ModeFinal, r)
	if !ok {
		return err
	}
	f, err := h.pipeline.Fragment(job, r)
	if err != nil {
		return h.pipelineError(c, err)
	}
	return c.JSON(f)
}

func (h *Handler) snapshotID(c *fiber.Ctx) (uuid.UUID, bool, error) {
	p := idParam{ID: c.Params("id")}
	if err := h.validate.Struct(p); err != nil {
		return uuid.Nil, false, jsonError(c, fiber.StatusBadRequest, "invalid_id", "id must be a uuid")
	}
	return uuid.MustParse(p.ID), true, nil
}

func (h *Handler) SaveSnapshot(c *fiber.Ctx) error {
	id, ok, err := h.snapshotID(c)
	if !ok {
		return err
	}
	r, ok, err := h.decode(c)
	if !ok {
		return err
	}
	// Only the canonical constant is stored; query values alias the
	// request buffer.
	tpl := strings.TrimSpace(c.Query("template"))
	if tpl == "" {
		tpl = strings.TrimSpace(r.SelectedTemplate)
	}
	if tpl != "" {
		k, err := domain.ParseTemplate(tpl)
		if err != nil {
			return h.pipelineError(c, err)
		}
		tpl = string(k)
	}
	snap := &repository.Snapshot{ID: id, Resume: r, Template: tpl}
	if err := h.repo.Save(c.UserContext(), snap); err != nil {
		h.logger.Error("failed to save snapshot", "id", id.String(), "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal", "failed to save snapshot")
	}
	return c.JSON(snap)
}

func (h *Handler) load(c *fiber.Ctx) (*repository.Snapshot, bool, error) {
	id, ok, err := h.snapshotID(c)
	if !ok {
		return nil, false, err
	}
	snap, err := h.repo.Get(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, jsonError(c, fiber.StatusNotFound, "not_found", "no snapshot with that id")
	}
	if err != nil {
		h.logger.Error("failed to load snapshot", "id", id.String(), "error", err)
		return nil, false, jsonError(c, fiber.StatusInternalServerError, "internal", "failed to load snapshot")
	}
	return snap, true, nil
}

func (h *Handler) GetSnapshot(c *fiber.Ctx) error {
	snap, ok, err := h.load(c)
	if !ok {
		return err
	}
	return c.JSON(snap)
}

func (h *Handler) ExportSnapshot(c *fiber.Ctx) error {
	snap, ok, err := h.load(c)
	if !ok {
		return err
	}
	sel := c.Query("template")
	if model.Blank(sel) {
		sel = snap.Template
	}
	return h.export(c, sel, snap.Resume)
}

// StatusFor maps a pipeline failure to an HTTP status.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidTemplate:
		return fiber.StatusBadRequest
	case domain.KindLaunch:
		return fiber.StatusServiceUnavailable
	case domain.KindReadinessTimeout:
		return fiber.StatusGatewayTimeout
	case domain.KindCapture, domain.KindNavigation:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func (h *Handler) pipelineError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	kind := string(domain.KindOf(err))
	if kind == "" {
		kind = "internal"
	}
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.Path(), "kind", kind, "error", err)
	}
	return jsonError(c, status, kind, err.Error())
}

func jsonError(c *fiber.Ctx, status int, kind, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": kind, "message": msg})
}
