package line

import (
	"testing"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/mealmate-bot/mealmate/internal/bot"
)

func TestConvertEvents(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)

	events := []webhook.EventInterface{
		webhook.MessageEvent{
			ReplyToken: "tok-text",
			Timestamp:  ts.UnixMilli(),
			Source:     webhook.UserSource{UserId: "U1"},
			Message:    webhook.TextMessageContent{Id: "m1", Text: "hello"},
		},
		webhook.MessageEvent{
			ReplyToken: "tok-image",
			Timestamp:  ts.UnixMilli(),
			Source:     webhook.GroupSource{GroupId: "G1", UserId: "U2"},
			Message:    webhook.ImageMessageContent{Id: "m2"},
		},
		webhook.MessageEvent{
			ReplyToken: "tok-sticker",
			Timestamp:  ts.UnixMilli(),
			Source:     webhook.UserSource{UserId: "U3"},
			Message:    webhook.StickerMessageContent{Id: "m3"},
		},
		webhook.FollowEvent{},
	}

	got := ConvertEvents(events)
	if len(got) != len(events) {
		t.Fatalf("converted %d events, want %d", len(got), len(events))
	}

	text := got[0]
	if text.Kind != bot.KindText || text.Text != "hello" || text.UserID != "U1" || text.ReplyToken != "tok-text" {
		t.Errorf("text event = %+v", text)
	}
	if !text.Timestamp.Equal(ts) {
		t.Errorf("text timestamp = %v, want %v", text.Timestamp, ts)
	}

	image := got[1]
	if image.Kind != bot.KindImage || image.MessageID != "m2" || image.UserID != "U2" {
		t.Errorf("image event = %+v", image)
	}

	if got[2].Kind != bot.KindOther {
		t.Errorf("sticker message kind = %v, want other", got[2].Kind)
	}
	if got[3].Kind != bot.KindOther {
		t.Errorf("non-message event kind = %v, want other", got[3].Kind)
	}
}

func TestConvertEventsEmpty(t *testing.T) {
	t.Parallel()

	if got := ConvertEvents(nil); len(got) != 0 {
		t.Errorf("ConvertEvents(nil) = %v, want empty", got)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", nil); err == nil {
		t.Error("NewClient(\"\") error = nil, want error")
	}
}
