// Package line adapts the LINE Messaging API SDK to the interfaces the
// event pipeline consumes: reply delivery, push delivery, and message
// content retrieval. It also converts webhook SDK events into the core's
// event type so the pipeline never handles SDK types directly.
package line

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/mealmate-bot/mealmate/internal/bot"
)

const maxContentBytes = 10 * 1024 * 1024

// Client wraps the LINE messaging and blob APIs.
type Client struct {
	api  *messaging_api.MessagingApiAPI
	blob *messaging_api.MessagingApiBlobAPI
	log  *slog.Logger
}

// NewClient creates a LINE Messaging API client from a channel access
// token.
func NewClient(channelToken string, log *slog.Logger) (*Client, error) {
	if channelToken == "" {
		return nil, fmt.Errorf("LINE channel token cannot be empty")
	}

	api, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging client: %w", err)
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE blob client: %w", err)
	}

	logger := log.With("component", "line_client")
	logger.Info("LINE client initialized")
	return &Client{api: api, blob: blob, log: logger}, nil
}

// ReplyText sends one text message keyed by reply token.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	c.log.DebugContext(ctx, "Reply sent", "text_len", len(text))
	return nil
}

// PushText sends one text message keyed by user ID.
func (c *Client) PushText(ctx context.Context, userID, text string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	_, err := c.api.PushMessage(&messaging_api.PushMessageRequest{
		To: userID,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	}, "")
	if err != nil {
		return fmt.Errorf("failed to push message to %s: %w", userID, err)
	}

	c.log.DebugContext(ctx, "Push sent", "user_id", userID, "text_len", len(text))
	return nil
}

// GetMessageContent downloads the raw content of a message (image bytes)
// keyed by message ID.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	resp, err := c.blob.GetMessageContent(messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get content for message %s: %w", messageID, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WarnContext(ctx, "Failed to close content response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content retrieval for message %s returned status %d", messageID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read content for message %s: %w", messageID, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty content for message %s", messageID)
	}

	return data, nil
}

// ConvertEvents maps webhook SDK events onto the pipeline's event type.
// Anything that is not a text or image message becomes a KindOther event,
// which the router skips without side effects.
func ConvertEvents(events []webhook.EventInterface) []bot.Event {
	converted := make([]bot.Event, 0, len(events))

	for _, raw := range events {
		msgEvent, ok := raw.(webhook.MessageEvent)
		if !ok {
			converted = append(converted, bot.Event{Kind: bot.KindOther})
			continue
		}

		ev := bot.Event{
			Kind:       bot.KindOther,
			ReplyToken: msgEvent.ReplyToken,
			UserID:     sourceUserID(msgEvent.Source),
			Timestamp:  time.UnixMilli(msgEvent.Timestamp),
		}

		switch msg := msgEvent.Message.(type) {
		case webhook.TextMessageContent:
			ev.Kind = bot.KindText
			ev.MessageID = msg.Id
			ev.Text = msg.Text
		case webhook.ImageMessageContent:
			ev.Kind = bot.KindImage
			ev.MessageID = msg.Id
		}

		converted = append(converted, ev)
	}

	return converted
}

func sourceUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
