package api

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

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvgrid/internal/analysis"
	"github.com/katalvlaran/lvgrid/internal/config"
)

const ringBody = `{"kind":"centrality","grid":{"shape":[3,3],"data":[0,0,0,0,1,0,0,0,0]}}`

func newTestServer(t *testing.T, cfg RouterConfig) *httptest.Server {
	t.Helper()
	cfg.DisableLogging = true
	if cfg.RateLimiter == nil && cfg.RateLimit == nil {
		cfg.RateLimit = &config.RateLimit{RequestsPerSecond: 1000, Burst: 1000}
	}
	ts := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthAndKinds(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/kinds")
	require.NoError(t, err)
	defer resp.Body.Close()
	var kinds []analysis.Kind
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&kinds))
	require.Equal(t, analysis.Kinds(), kinds)
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := post(t, ts.URL+"/api/v1/analyses",
		`{"kind":"voronoi","grid":{"shape":[1,3],"data":[5,0,7]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out struct {
		Kind  string `json:"kind"`
		Field struct {
			Shape []int     `json:"shape"`
			Data  []float64 `json:"data"`
		} `json:"field"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "voronoi", out.Kind)
	require.Equal(t, []float64{5, 5, 7}, out.Field.Data)
}

func TestAnalyze_Errors(t *testing.T) {
	small := config.Limits{MaxCells: 4, MaxWorkers: 2, MaxBodyBytes: 1 << 10}
	ts := newTestServer(t, RouterConfig{Limits: small})

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"kind":`, http.StatusBadRequest},
		{"bad shape", `{"kind":"distance","grid":{"shape":[2,2],"data":[1]}}`, http.StatusBadRequest},
		{"unknown kind", `{"kind":"wind","grid":{"shape":[1,2],"data":[0,1]}}`, http.StatusUnprocessableEntity},
		{"solid origin", `{"kind":"isovist","grid":{"shape":[1,2],"data":[0,1]},"origin":[0,1]}`, http.StatusUnprocessableEntity},
		{"too many cells", ringBody, http.StatusRequestEntityTooLarge},
		{"body too large", `{"kind":"distance","pad":"` + strings.Repeat("x", 2<<10) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/api/v1/analyses", tc.body)
			require.Equal(t, tc.want, resp.StatusCode)
			var e map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			require.NotEmpty(t, e["error"])
		})
	}
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})

	resp := post(t, ts.URL+"/api/v1/render?cellSize=2", ringBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	resp = post(t, ts.URL+"/api/v1/render?layer=top", ringBody)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/v1/render?cellSize=0", ringBody)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRender_ImageTooLarge(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxPixels = 64 * 64
	ts := newTestServer(t, RouterConfig{Limits: limits})

	// 3x3 cells at 21px is 63x63
	resp := post(t, ts.URL+"/api/v1/render?cellSize=21", ringBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, ts.URL+"/api/v1/render?cellSize=22", ringBody)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	var e map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	require.Contains(t, e["error"], "image too large")

	resp = post(t, ts.URL+"/api/v1/render?cellSize=100000", ringBody)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, RouterConfig{RateLimit: &config.RateLimit{RequestsPerSecond: 0.001, Burst: 1}})

	first := post(t, ts.URL+"/api/v1/analyses", ringBody)
	require.Equal(t, http.StatusOK, first.StatusCode)
	second := post(t, ts.URL+"/api/v1/analyses", ringBody)
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	require.Equal(t, "1", second.Header.Get("Retry-After"))

	// health checks bypass the limiter
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	ts := newTestServer(t, RouterConfig{Metrics: m})
	post(t, ts.URL+"/api/v1/analyses", ringBody)
	post(t, ts.URL+"/api/v1/analyses", `{"kind":"wind","grid":{"shape":[1,1],"data":[0]}}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(b)
	require.Contains(t, text, `lvgrid_analysis_duration_seconds_count{kind="centrality"} 1`)
	require.Contains(t, text, `lvgrid_analysis_errors_total{kind="unknown",status="422"} 1`)
	require.Contains(t, text, `endpoint="/api/v1/analyses"`)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "lvgrid_analysis_duration_seconds")
	require.Contains(t, names, "lvgrid_analysis_errors_total")
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
}

func TestWebSocket_Progress(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(ringBody)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	var progress int
	for {
		var ev struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&ev))
		if ev.Event == "progress" {
			var p ProgressData
			require.NoError(t, json.Unmarshal(ev.Data, &p))
			require.Equal(t, 8, p.Total)
			progress++
			continue
		}
		require.Equal(t, "result", ev.Event)
		var res analysis.Result
		require.NoError(t, json.Unmarshal(ev.Data, &res))
		require.Equal(t, analysis.KindCentrality, res.Kind)
		v, _ := res.Field.At(1, 1)
		require.Equal(t, 0.0, v)
		break
	}
	require.Equal(t, 8, progress)
}

func TestWebSocket_Error(t *testing.T) {
	ts := newTestServer(t, RouterConfig{})
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"wind","grid":{"shape":[1,1],"data":[0]}}`)))
	var ev struct {
		Event string    `json:"event"`
		Data  ErrorData `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "error", ev.Event)
	require.Equal(t, http.StatusUnprocessableEntity, ev.Data.Status)
}

func TestWebSocket_OriginRejected(t *testing.T) {
	ts := newTestServer(t, RouterConfig{CORSOrigins: []string{"https://plans.example"}})
	hdr := http.Header{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts), hdr)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, http.StatusOK, statusFor(nil))
	require.Equal(t, http.StatusRequestEntityTooLarge, statusFor(analysis.ErrTooLarge))
	require.Equal(t, StatusClientClosedRequest, statusFor(context.Canceled))
	require.Equal(t, http.StatusServiceUnavailable, statusFor(context.DeadlineExceeded))
	require.Equal(t, http.StatusUnprocessableEntity, statusFor(errors.New("boom")))
}

func TestOriginAllowed(t *testing.T) {
	patterns := []string{"http://localhost:*", "https://plans.example"}
	assert.True(t, originAllowed("", patterns))
	assert.True(t, originAllowed("http://localhost:5173", patterns))
	assert.True(t, originAllowed("https://plans.example", patterns))
	assert.False(t, originAllowed("https://plans.example.evil", patterns))
	assert.False(t, originAllowed("http://127.0.0.1:80", patterns))
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	rl := NewIPRateLimiter(config.RateLimit{RequestsPerSecond: 1, Burst: 1})
	defer rl.Stop()

	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))
	require.Equal(t, map[string]uint64{"allowed": 1, "rejected": 1}, rl.Stats())

	rl.cleanup()
	_, ok := rl.limiters.Load("10.0.0.1")
	require.False(t, ok)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	require.Equal(t, "192.0.2.1", GetClientIP(r, true))

	r.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", GetClientIP(r, true))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	require.Equal(t, "203.0.113.9", GetClientIP(r, true))

	// headers are ignored unless the proxy is trusted
	require.Equal(t, "192.0.2.1", GetClientIP(r, false))
}

// TestRateLimit_ForgedForwardedFor: rotating X-Forwarded-For does not reset the budget.
func TestRateLimit_ForgedForwardedFor(t *testing.T) {
	ts := newTestServer(t, RouterConfig{RateLimit: &config.RateLimit{RequestsPerSecond: 0.001, Burst: 1}})

	send := func(xff string) int {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/analyses", strings.NewReader(ringBody))
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", xff)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	require.Equal(t, http.StatusOK, send("203.0.113.1"))
	require.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
}

func TestRateLimit_TrustProxy(t *testing.T) {
	rl := NewIPRateLimiter(config.RateLimit{RequestsPerSecond: 0.001, Burst: 1, CleanupInterval: time.Hour, TrustProxy: true})
	t.Cleanup(rl.Stop)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	serve := func(xff string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}
	require.Equal(t, http.StatusOK, serve("203.0.113.1"))
	require.Equal(t, http.StatusOK, serve("203.0.113.2"))
	require.Equal(t, http.StatusTooManyRequests, serve("203.0.113.1"))
}
