// Package bot exposes access keys and saved-resume exports over Discord.
//
//	!key                      reply with a fresh access key
//	!resume <id> [template]   export a saved snapshot and upload the PDF
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"resume-builder/internal/accesskey"
	"resume-builder/internal/adapter/delivery"
	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
)

const exportTimeout = 2 * time.Minute

// Messenger is the part of *discordgo.Session the bot writes with.
type Messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelFileSend(channelID, name string, r io.Reader, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type KeyIssuer interface {
	Issue(subject string) (accesskey.Key, error)
}

type SnapshotLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*repository.Snapshot, error)
}

type Exporter interface {
	NewJob(templateSel, modeSel string, defMode domain.ViewMode, r model.Resume) (domain.RenderJob, error)
	ExportPDF(ctx context.Context, job domain.RenderJob, r model.Resume) (usecase.Export, error)
}

type Bot struct {
	session  *discordgo.Session
	keys     KeyIssuer
	store    SnapshotLoader
	exporter Exporter
	logger   *slog.Logger
}

func New(token string, keys KeyIssuer, store SnapshotLoader, exporter Exporter, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{session: session, keys: keys, store: store, exporter: exporter, logger: logger}
	session.AddHandler(b.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	return b, nil
}

// Session exposes the underlying session for delivery uploads.
func (b *Bot) Session() *discordgo.Session { return b.session }

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord session: %w", err)
	}
	b.logger.Info("Bot is running...")
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}
	if !strings.HasPrefix(strings.TrimSpace(m.Content), "!") {
		return
	}
	go b.Handle(context.Background(), s, m.ChannelID, m.Author.ID, m.Content)
}

// Handle runs one command and replies on channelID.
func (b *Bot) Handle(ctx context.Context, out Messenger, channelID, authorID, content string) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return
	}
	log := b.logger.With("channel", channelID, "author", authorID, "command", fields[0])
	var err error
	switch strings.ToLower(fields[0]) {
	case "!key":
		err = b.issueKey(out, channelID, authorID)
	case "!resume":
		err = b.exportSnapshot(ctx, out, channelID, fields[1:])
	default:
		return
	}
	if err != nil {
		log.Error("command failed", "error", err)
		reply(out, channelID, "❌ "+userMessage(err))
	}
}

func (b *Bot) issueKey(out Messenger, channelID, authorID string) error {
	k, err := b.keys.Issue("discord:" + authorID)
	if err != nil {
		return err
	}
	reply(out, channelID, fmt.Sprintf("🔑 Access key (valid until %s UTC):\n`%s`", k.ExpiresAt.UTC().Format("2006-01-02 15:04"), k.Token))
	return nil
}

func (b *Bot) exportSnapshot(ctx context.Context, out Messenger, channelID string, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return errUsage
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return errUsage
	}
	snap, err := b.store.Get(ctx, id)
	if err != nil {
		return err
	}
	sel := snap.Template
	if len(args) == 2 {
		sel = args[1]
	}
	job, err := b.exporter.NewJob(sel, "", domain.ModeFinal, snap.Resume)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()
	exp, err := b.exporter.ExportPDF(ctx, job, snap.Resume)
	if err != nil {
		return err
	}
	return delivery.NewDiscord(out, channelID, b.logger).Deliver(ctx, exp.FileName, exp.PDF)
}

var errUsage = errors.New("usage: !resume <snapshot-id> [modern|classic|hybrid]")

func userMessage(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, repository.ErrNotFound):
		return "no saved resume with that id"
	case errors.Is(err, domain.ErrInvalidTemplate):
		return "unknown template; use modern, classic or hybrid"
	case errors.Is(err, domain.ErrReadinessTimeout):
		return "the document never finished rendering, please check the resume and try again"
	case errors.Is(err, domain.ErrLaunchFailure):
		return "the renderer is unavailable right now, try again later"
	}
	return "export failed"
}

func reply(out Messenger, channelID, msg string) {
	if _, err := out.ChannelMessageSend(channelID, msg); err != nil {
		slog.Warn("bot: reply failed", "channel", channelID, "error", err)
	}
}
