package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-room-token/internal/auth"
	"github.com/tbourn/go-room-token/internal/config"
	"github.com/tbourn/go-room-token/internal/domain"
	"github.com/tbourn/go-room-token/internal/services"
)

type fakeTokens struct{ calls int }

func (f *fakeTokens) Issue(_ context.Context, req services.ProvisionRequest) (*services.TokenGrant, error) {
	f.calls++
	return &services.TokenGrant{Token: "tok-" + req.UserIdentity, RoomType: "group"}, nil
}

type fakeRecordings struct{ calls int }

func (f *fakeRecordings) SetRecordingRules(_ context.Context, roomSID string, rules json.RawMessage) (*domain.RecordingRules, error) {
	f.calls++
	return &domain.RecordingRules{RoomSID: roomSID, Rules: rules}, nil
}

type fakeVerifier map[string]string // token -> email

func (f fakeVerifier) VerifyIdentityToken(_ context.Context, raw string) (*domain.Identity, error) {
	if email, ok := f[raw]; ok {
		return &domain.Identity{UID: "uid-" + raw, Email: email}, nil
	}
	return nil, errors.New("invalid")
}

type fixture struct {
	r          *gin.Engine
	tokens     *fakeTokens
	recordings *fakeRecordings
}

func baseConfig() config.Config {
	return config.Config{
		APIBasePath: "/",
		RateRPS:     100,
		RateBurst:   10,
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newFixture(t *testing.T, cfg config.Config) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := fixture{r: gin.New(), tokens: &fakeTokens{}, recordings: &fakeRecordings{}}
	RegisterRoutes(f.r, Deps{
		Tokens:     f.tokens,
		Recordings: f.recordings,
		Verifier:   fakeVerifier{"good": "x@twilio.com", "outsider": "x@gmail.com"},
		Policy:     auth.NewDomainPolicy("twilio.com"),
	}, cfg)
	return f
}

func (f fixture) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	f.r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_Health_Metrics_Fallbacks(t *testing.T) {
	f := newFixture(t, baseConfig())

	w := f.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("GET /health = %d %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("expected Cache-Control no-store, got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	w = f.do(http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "roomtoken_http_requests_total") {
		t.Fatalf("GET /metrics bad: code=%d", w.Code)
	}

	w = f.do(http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("GET /nope = %d %s", w.Code, w.Body.String())
	}

	w = f.do(http.MethodGet, "/token", "")
	if w.Code != http.StatusMethodNotAllowed || !strings.Contains(w.Body.String(), `"code":"method_not_allowed"`) {
		t.Fatalf("GET /token = %d %s", w.Code, w.Body.String())
	}

	w = f.do(http.MethodGet, "/swagger/index.html", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off by default, got %d", w.Code)
	}
}

func TestRegisterRoutes_TokenOpenByDefault(t *testing.T) {
	f := newFixture(t, baseConfig())

	w := f.do(http.MethodPost, "/token", `{"user_identity":"alice","room_name":"r1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /token = %d %s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"token":"tok-alice","room_type":"group"}` {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestRegisterRoutes_TokenGatedWhenEnabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Auth.TokenEndpoint = true
	f := newFixture(t, cfg)

	body := `{"user_identity":"alice","room_name":"r1"}`
	if w := f.do(http.MethodPost, "/token", body); w.Code != http.StatusUnauthorized || w.Body.Len() != 0 {
		t.Fatalf("ungated POST /token = %d %q", w.Code, w.Body.String())
	}
	if w := f.do(http.MethodPost, "/token", body, "Authorization", "Bearer good"); w.Code != http.StatusOK {
		t.Fatalf("gated POST /token = %d %s", w.Code, w.Body.String())
	}
	if f.tokens.calls != 1 {
		t.Fatalf("issuer calls = %d; want 1", f.tokens.calls)
	}
}

func TestRegisterRoutes_RecordingRulesAlwaysGated(t *testing.T) {
	f := newFixture(t, baseConfig())
	body := `{"room_sid":"RM123","rules":[{"type":"record","all":true}]}`

	w := f.do(http.MethodPost, "/recordingrules", body, "Authorization", "good")
	if w.Code != http.StatusOK {
		t.Fatalf("allowed caller = %d %s", w.Code, w.Body.String())
	}
	var got domain.RecordingRules
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.RoomSID != "RM123" {
		t.Fatalf("payload = %s (%v)", w.Body.String(), err)
	}

	for _, hdr := range []string{"", "outsider", "forged"} {
		w := f.do(http.MethodPost, "/recordingrules", body, "Authorization", hdr)
		if w.Code != http.StatusUnauthorized || w.Body.Len() != 0 {
			t.Fatalf("Authorization %q: %d %q", hdr, w.Code, w.Body.String())
		}
	}
	if f.recordings.calls != 1 {
		t.Fatalf("recording calls = %d; want 1", f.recordings.calls)
	}
}

func TestRegisterRoutes_BasePathAndRateLimit(t *testing.T) {
	cfg := baseConfig()
	cfg.APIBasePath = "/api/v1"
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	f := newFixture(t, cfg)

	body := `{"user_identity":"alice","room_name":"r1"}`
	if w := f.do(http.MethodPost, "/token", body); w.Code != http.StatusNotFound {
		t.Fatalf("root /token should not exist with a base path, got %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/api/v1/token", body); w.Code != http.StatusOK {
		t.Fatalf("first call = %d", w.Code)
	}
	w := f.do(http.MethodPost, "/api/v1/token", body)
	if w.Code != http.StatusTooManyRequests || !strings.Contains(w.Body.String(), `"code":"rate_limited"`) {
		t.Fatalf("second call = %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_SwaggerAndCORSAllowlist(t *testing.T) {
	cfg := baseConfig()
	cfg.SwaggerEnabled = true
	cfg.CORS.AllowedOrigins = []string{"http://example.com"}
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour}
	f := newFixture(t, cfg)

	w := f.do(http.MethodGet, "/swagger/doc.json", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/recordingrules") {
		t.Fatalf("swagger doc = %d", w.Code)
	}

	w = f.do(http.MethodGet, "/health", "", "Origin", "http://example.com", "X-Forwarded-Proto", "https")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("expected HSTS on https request")
	}
}

func TestRegisterRoutes_GzipNegotiated(t *testing.T) {
	f := newFixture(t, baseConfig())
	w := f.do(http.MethodPost, "/token", `{"user_identity":"alice","room_name":"r1"}`, "Accept-Encoding", "gzip")
	if w.Code != http.StatusOK || w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, got %d %q", w.Code, w.Header().Get("Content-Encoding"))
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("12345")))
	if w.Code != http.StatusOK {
		t.Fatalf("small body = %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(strings.Repeat("x", 64))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("large body = %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}
