package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"companion-recall/internal/platform/logger"
	"companion-recall/internal/ports/feedback"
	"companion-recall/internal/ports/world"
)

func TestWebhookSink_DeliversCues(t *testing.T) {
	got := make(chan cueEvent, 1)
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("X-Hook-Key")
		var ev cueEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
		got <- ev
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(WebhookConfig{URL: srv.URL, APIKey: "secret", APIKeyHeader: "X-Hook-Key"}, nil)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sink.Run(ctx) }()

	sink.Play(ctx, "nether", world.Vec3{X: 1, Y: 2, Z: 3}, feedback.CueWhistleMount)

	select {
	case ev := <-got:
		if ev.Cue != string(feedback.CueWhistleMount) || ev.Zone != "nether" || ev.X != 1 || ev.Z != 3 {
			t.Fatalf("unexpected event: %+v", ev)
		}
		if key != "secret" {
			t.Fatalf("expected api key header, got %q", key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cue not delivered")
	}
}

func TestWebhookSink_DropsWhenQueueFull(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Warn, Format: logger.FormatJSON, Output: &buf})

	sink, err := NewWebhookSink(WebhookConfig{URL: "http://127.0.0.1:1/cues"}, log)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	// sin Run nadie consume la cola
	for i := 0; i < queueSize+1; i++ {
		sink.Play(context.Background(), "overworld", world.Vec3{}, feedback.CueWhistlePet)
	}
	if !strings.Contains(buf.String(), "cue dropped") {
		t.Fatalf("expected a dropped cue warning, got %q", buf.String())
	}
}

func TestNewWebhookSink_Validates(t *testing.T) {
	if _, err := NewWebhookSink(WebhookConfig{}, nil); !errors.Is(err, ErrWebhookNotConfigured) {
		t.Fatalf("expected ErrWebhookNotConfigured, got %v", err)
	}
	if _, err := NewWebhookSink(WebhookConfig{URL: "not a url"}, nil); err == nil {
		t.Fatal("expected invalid url error")
	}
}

func TestLogSink_Logs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})

	NewLogSink(log).Play(context.Background(), "overworld", world.Vec3{X: 5}, feedback.CueWhistlePet)

	if !strings.Contains(buf.String(), `"cue":"whistle.pet"`) {
		t.Fatalf("expected cue in log output, got %q", buf.String())
	}
}
