package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"companion-recall/internal/adapters/world/memory"
	"companion-recall/internal/domain/companions"
	"companion-recall/internal/domain/cooldowns"
	"companion-recall/internal/domain/eligibility"
	"companion-recall/internal/middleware"
	"companion-recall/internal/ports/world"
	"companion-recall/internal/router"

	"github.com/google/uuid"
)

type commandResponse struct {
	Count    int      `json:"count"`
	Messages []string `json:"messages"`
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.Server, *memory.Player) {
	t.Helper()
	ctx := context.Background()

	srv := memory.NewServer(nil, "overworld", "nether")
	t.Cleanup(srv.Start(ctx, 0))

	regs := companions.NewRegistries(nil, nil, nil)
	for _, z := range []string{"overworld", "nether"} {
		if _, err := regs.Open(ctx, z); err != nil {
			t.Fatalf("open registry: %v", err)
		}
	}

	player := memory.NewPlayer(uuid.New(), "steve", world.Vec3{Y: 64})
	if err := srv.Join(ctx, "overworld", player); err != nil {
		t.Fatalf("join: %v", err)
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Server:          srv,
		Registries:      regs,
		Rules:           eligibility.NewRules(nil, nil),
		Cooldowns:       cooldowns.New(),
		WhistleCooldown: time.Minute,
	}))
	t.Cleanup(ts.Close)
	return ts, srv, player
}

func TestHTTP_EndToEnd_CompanionLifecycle(t *testing.T) {
	ts, srv, player := newTestServer(t)
	caller := player.ID().String()

	name := "Rex"
	wolf := memory.NewCreature(memory.CreatureSpec{
		ID: uuid.New(), Type: eligibility.TypeWolf, Name: &name,
		Tamed: true, Owner: player.ID(), Position: world.Vec3{X: 30, Y: 64},
	})
	if err := srv.Spawn(context.Background(), "overworld", wolf); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	// 1) Sin caller => 401
	{
		st, _ := doReq(t, ts.URL, "POST", "/companions/pets/find", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without caller, got %d", st)
		}
	}

	// 2) Categoría desconocida => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/companions/dragons/find", caller, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 unknown category, got %d", st)
		}
	}

	// 3) find registra al lobo
	{
		st, body := doReq(t, ts.URL, "POST", "/companions/pets/find", caller, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 find, got %d body=%s", st, string(body))
		}
		if res := decode(t, body); res.Count != 1 {
			t.Fatalf("expected 1 found, got %+v", res)
		}
	}

	// 4) list lo muestra
	{
		st, body := doReq(t, ts.URL, "GET", "/companions/pet", caller, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		res := decode(t, body)
		if res.Count != 1 || !strings.Contains(strings.Join(res.Messages, "\n"), "- Rex (overworld: 30, 64, 0)") {
			t.Fatalf("unexpected list %+v", res)
		}
	}

	// 5) whistle lo trae
	{
		st, body := doReq(t, ts.URL, "POST", "/companions/pets/whistle", caller, map[string]any{"name": "rex"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 whistle, got %d body=%s", st, string(body))
		}
		if res := decode(t, body); res.Count != 1 {
			t.Fatalf("expected 1 called, got %+v", res)
		}
	}

	// 6) segundo whistle => cooldown
	{
		req := newReq(t, ts.URL, "POST", "/companions/pets/whistle", caller, nil)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 on cooldown, got %d", res.StatusCode)
		}
		if res.Header.Get("Retry-After") == "" {
			t.Fatalf("expected Retry-After header")
		}
	}

	// 7) release sin nombre => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/companions/pets/release", caller, map[string]any{"name": ""})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 release without name, got %d", st)
		}
	}

	// 8) release
	{
		st, body := doReq(t, ts.URL, "POST", "/companions/pets/release", caller, map[string]any{"name": "Rex"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 release, got %d body=%s", st, string(body))
		}
	}

	// 9) ya no está
	{
		st, _ := doReq(t, ts.URL, "POST", "/companions/pets/dismiss", caller, map[string]any{"name": "Rex"})
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after release, got %d", st)
		}
		_, body := doReq(t, ts.URL, "GET", "/companions/pets", caller, nil)
		if res := decode(t, body); res.Count != 0 {
			t.Fatalf("expected empty list after release, got %+v", res)
		}
	}
}

func TestHTTP_HealthMetricsDebug(t *testing.T) {
	ts, _, player := newTestServer(t)

	if st, body := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", st, string(body))
	}
	if st, _ := doReq(t, ts.URL, "GET", "/metrics", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", st)
	}

	st, body := doReq(t, ts.URL, "GET", "/companions/mounts/debug", player.ID().String(), nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 debug, got %d body=%s", st, string(body))
	}
	if res := decode(t, body); len(res.Messages) == 0 || res.Messages[0] != "=== Mounts Debug Info ===" {
		t.Fatalf("unexpected debug %+v", res)
	}
}

func TestHTTP_WhistleEmptyRoster(t *testing.T) {
	ts, _, player := newTestServer(t)

	st, body := doReq(t, ts.URL, "POST", "/companions/mounts/whistle", player.ID().String(), nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 with no mounts, got %d body=%s", st, string(body))
	}
	if res := decode(t, body); res.Count != 0 || len(res.Messages) == 0 {
		t.Fatalf("expected a message and count 0, got %+v", res)
	}
}

func decode(t *testing.T, body []byte) commandResponse {
	t.Helper()
	var res commandResponse
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("decode %q: %v", string(body), err)
	}
	return res
}

func newReq(t *testing.T, baseURL, method, path, playerID string, body any) *http.Request {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set(middleware.CallerHeader, playerID)
	}
	return req
}

func doReq(t *testing.T, baseURL, method, path, playerID string, body any) (int, []byte) {
	t.Helper()

	res, err := http.DefaultClient.Do(newReq(t, baseURL, method, path, playerID, body))
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
