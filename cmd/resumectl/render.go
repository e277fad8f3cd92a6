package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"resume-builder/internal/adapter/delivery"
	"resume-builder/internal/app"
	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume snapshot to PDF",
	Long: `Render a resume JSON snapshot with one template, or with every template
when --template=all. Templates render concurrently, one browser per job.`,
	RunE: runRender,
}

var (
	renderInput    string
	renderTemplate string
	renderMode     string
	renderOut      string
	renderHTML     bool
	renderDeliver  bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "input", "i", "", "Path to resume JSON (- for stdin)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "modern, classic, hybrid or all (default: the snapshot's template)")
	renderCmd.Flags().StringVarP(&renderMode, "mode", "m", "final", "final or draft")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file, or directory with --template=all")
	renderCmd.Flags().BoolVar(&renderHTML, "html", false, "Write the assembled HTML instead of a PDF")
	renderCmd.Flags().BoolVar(&renderDeliver, "deliver", false, "Upload each PDF to the configured Discord channel")
	_ = renderCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(renderCmd)
}

// renderer is the part of *usecase.Exporter the command drives.
type renderer interface {
	NewJob(templateSel, modeSel string, defMode domain.ViewMode, r model.Resume) (domain.RenderJob, error)
	RenderHTML(ctx context.Context, job domain.RenderJob, r model.Resume) ([]byte, error)
	ExportPDF(ctx context.Context, job domain.RenderJob, r model.Resume) (usecase.Export, error)
}

type deliverer interface {
	Deliver(ctx context.Context, fileName string, pdf []byte) error
}

type renderRequest struct {
	Resume   model.Resume
	Template string
	Mode     string
	Out      string
	HTML     bool
}

func runRender(cmd *cobra.Command, _ []string) error {
	raw, err := readInput(renderInput)
	if err != nil {
		return err
	}
	r, warnings, err := model.DecodeSnapshot(raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", renderInput, err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	var d deliverer
	if renderDeliver {
		if renderHTML {
			return fmt.Errorf("--deliver cannot be combined with --html")
		}
		if cfg.Discord.Token == "" || cfg.Discord.ChannelID == "" {
			return fmt.Errorf("--deliver needs DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID")
		}
		session, err := discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			return fmt.Errorf("error creating Discord session: %w", err)
		}
		d = delivery.NewDiscord(session, cfg.Discord.ChannelID, log)
	}

	written, err := renderFiles(ctx, a.Exporter, d, renderRequest{
		Resume: r, Template: renderTemplate, Mode: renderMode, Out: renderOut, HTML: renderHTML,
	})
	for _, p := range written {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return err
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

// renderFiles renders every requested template and returns the written
// paths in template order.
func renderFiles(ctx context.Context, e renderer, d deliverer, req renderRequest) ([]string, error) {
	selectors := []string{req.Template}
	all := strings.EqualFold(strings.TrimSpace(req.Template), "all")
	if all {
		selectors = selectors[:0]
		for _, k := range domain.Templates {
			selectors = append(selectors, string(k))
		}
	}

	// Validate every selector before any browser starts.
	jobs := make([]domain.RenderJob, len(selectors))
	for i, sel := range selectors {
		job, err := e.NewJob(sel, req.Mode, domain.ModeFinal, req.Resume)
		if err != nil {
			return nil, err
		}
		jobs[i] = job
	}

	paths := make([]string, len(jobs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			data, name, err := renderOne(gctx, e, job, req)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Template, err)
			}
			p := outputPath(req.Out, name, all)
			if dir := filepath.Dir(p); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(p, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", p, err)
			}
			if d != nil {
				if err := d.Deliver(gctx, name, data); err != nil {
					return fmt.Errorf("deliver %s: %w", name, err)
				}
			}
			mu.Lock()
			paths[i] = p
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	var written []string
	for _, p := range paths {
		if p != "" {
			written = append(written, p)
		}
	}
	return written, err
}

func renderOne(ctx context.Context, e renderer, job domain.RenderJob, req renderRequest) ([]byte, string, error) {
	name := usecase.FileName(req.Resume.Name, job.Template)
	if req.HTML {
		html, err := e.RenderHTML(ctx, job, req.Resume)
		return html, strings.TrimSuffix(name, ".pdf") + ".html", err
	}
	out, err := e.ExportPDF(ctx, job, req.Resume)
	return out.PDF, name, err
}

// outputPath places name under out. A single render may name the file
// directly.
func outputPath(out, name string, many bool) string {
	switch {
	case out == "":
		return name
	case many || strings.HasSuffix(out, string(os.PathSeparator)):
		return filepath.Join(out, name)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}
