package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"companion-recall/internal/platform/httpclient"
	"companion-recall/internal/platform/logger"
	"companion-recall/internal/ports/feedback"
	"companion-recall/internal/ports/world"
)

var ErrWebhookNotConfigured = errors.New("feedback webhook not configured")

const (
	queueSize       = 256
	deliveryRetries = 2
)

// WebhookConfig del sink que reenvía cues al host de juego.
type WebhookConfig struct {
	URL    string
	APIKey string
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration
}

// cueEvent es el payload que recibe el host.
type cueEvent struct {
	Zone string    `json:"zone"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	Z    float64   `json:"z"`
	Cue  string    `json:"cue"`
	At   time.Time `json:"at"`
}

// WebhookSink encola cues y los manda por HTTP desde Run. Play nunca bloquea:
// si la cola está llena, el cue se descarta.
type WebhookSink struct {
	url     string
	headers map[string]string
	client  *httpclient.Client
	log     logger.Logger
	queue   chan cueEvent
	now     func() time.Time
}

func NewWebhookSink(cfg WebhookConfig, log logger.Logger) (*WebhookSink, error) {
	client := httpclient.New(cfg.Timeout)
	client.Retries = deliveryRetries
	return newWebhookSink(cfg, client, log)
}

func newWebhookSink(cfg WebhookConfig, client *httpclient.Client, log logger.Logger) (*WebhookSink, error) {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		return nil, ErrWebhookNotConfigured
	}
	if err := httpclient.ValidateURL(u); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	headers := map[string]string{}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		h := strings.TrimSpace(cfg.APIKeyHeader)
		if h == "" {
			h = "X-Api-Key"
		}
		headers[h] = key
	}

	return &WebhookSink{
		url:     u,
		headers: headers,
		client:  client,
		log:     log.With(map[string]any{"component": "feedback_webhook"}),
		queue:   make(chan cueEvent, queueSize),
		now:     time.Now,
	}, nil
}

func (s *WebhookSink) Play(_ context.Context, zoneID string, pos world.Vec3, cue feedback.Cue) {
	ev := cueEvent{Zone: zoneID, X: pos.X, Y: pos.Y, Z: pos.Z, Cue: string(cue), At: s.now().UTC()}
	select {
	case s.queue <- ev:
	default:
		s.log.Warn("cue dropped: queue full", map[string]any{"cue": string(cue), "zone": zoneID})
	}
}

// Run manda los cues encolados hasta que ctx se cancela.
func (s *WebhookSink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.queue:
			if err := s.client.PostJSON(ctx, s.url, s.headers, ev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.log.Warn("cue delivery failed", map[string]any{"cue": ev.Cue, "zone": ev.Zone, "error": err.Error()})
			}
		}
	}
}
