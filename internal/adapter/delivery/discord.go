// Package delivery hands finished PDFs to a chat channel.
package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// FileSender is the part of *discordgo.Session used for uploads.
type FileSender interface {
	ChannelFileSend(channelID, name string, r io.Reader, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Discord struct {
	sender    FileSender
	channelID string
	logger    *slog.Logger
}

func NewDiscord(sender FileSender, channelID string, logger *slog.Logger) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{sender: sender, channelID: channelID, logger: logger}
}

// Deliver uploads pdf to the configured channel.
func (d *Discord) Deliver(ctx context.Context, fileName string, pdf []byte) error {
	return d.DeliverTo(ctx, d.channelID, fileName, pdf)
}

// DeliverTo uploads pdf to channelID.
func (d *Discord) DeliverTo(ctx context.Context, channelID, fileName string, pdf []byte) error {
	if channelID == "" {
		return errors.New("delivery: no channel configured")
	}
	if len(pdf) == 0 {
		return errors.New("delivery: empty pdf")
	}
	msg, err := d.sender.ChannelFileSend(channelID, fileName, bytes.NewReader(pdf), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send PDF file: %w", err)
	}
	d.logger.Info("delivered pdf", "channel", channelID, "file", fileName, "message_id", msg.ID)
	return nil
}
