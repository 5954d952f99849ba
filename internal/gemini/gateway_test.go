package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type stubClient struct {
	text string
	err  error
}

func (c *stubClient) Generate(context.Context, string) (string, error) {
	return c.text, c.err
}

func TestGatewayCompose(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name   string
		client *stubClient
		want   string
	}{
		{
			name:   "successful generation passes through",
			client: &stubClient{text: "looks delicious!"},
			want:   "looks delicious!",
		},
		{
			name:   "generation error masked by fallback",
			client: &stubClient{err: errors.New("backend unavailable")},
			want:   "fallback reply",
		},
		{
			name:   "empty completion masked by fallback",
			client: &stubClient{text: ""},
			want:   "fallback reply",
		},
		{
			name:   "whitespace-only completion masked by fallback",
			client: &stubClient{text: "  \n\t "},
			want:   "fallback reply",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := NewGateway(tc.client, "fallback reply", log)
			got := g.Compose(context.Background(), "prompt")
			if got != tc.want {
				t.Errorf("Compose() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGatewayComposeNeverEmpty(t *testing.T) {
	t.Parallel()

	g := NewGateway(&stubClient{err: errors.New("down")}, "fallback reply", nil)
	if got := g.Compose(context.Background(), "anything"); got == "" {
		t.Error("Compose() returned empty string, want fallback")
	}
}
