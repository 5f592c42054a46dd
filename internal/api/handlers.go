package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/katalvlaran/lvgrid/internal/analysis"
	"github.com/katalvlaran/lvgrid/render"
)

// StatusClientClosedRequest is the non-standard status logged when the
// client goes away mid-analysis.
const StatusClientClosedRequest = 499

func (h *handlers) handleKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, analysis.Kinds())
}

func (h *handlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, status, err := h.run(r.Context(), req)
	if err != nil {
		writeError(w, err.Error(), status)
		return
	}
	writeJSON(w, res)
}

// handleRender runs the analysis and answers with a PNG of its field.
// Query parameters: layer (z slice of volumes), cellSize (pixels).
func (h *handlers) handleRender(w http.ResponseWriter, r *http.Request) {
	opts := []render.Option{render.WithCellSize(h.render.CellSize), render.WithMaxPixels(h.limits.MaxPixels)}
	for key, apply := range map[string]func(int) render.Option{
		"layer":    render.WithLayer,
		"cellSize": render.WithCellSize,
	} {
		v := r.URL.Query().Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, fmt.Sprintf("invalid %s: %q", key, v), http.StatusBadRequest)
			return
		}
		opts = append(opts, apply(n))
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, status, err := h.run(r.Context(), req)
	if err != nil {
		writeError(w, err.Error(), status)
		return
	}
	var buf bytes.Buffer
	if err = render.PNG(&buf, res.Field, opts...); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, render.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err = buf.WriteTo(w); err != nil {
		log.Printf("api: write png: %v", err)
	}
}

// decode reads a size-capped JSON request; on failure it has already answered.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request) (*analysis.Request, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxBodyBytes)
	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		writeError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	return &req, true
}

// run executes req and records the outcome.
func (h *handlers) run(ctx context.Context, req *analysis.Request) (*analysis.Result, int, error) {
	res, err := h.runner.Run(ctx, req)
	status := statusFor(err)
	h.metrics.observeAnalysis(metricKind(req.Kind), elapsed(res), status)
	if err != nil {
		return nil, status, err
	}

	return res, status, nil
}

// statusFor maps an analysis error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, analysis.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		// every engine error describes a request the engine cannot serve
		return http.StatusUnprocessableEntity
	}
}

func elapsed(res *analysis.Result) time.Duration {
	if res == nil {
		return 0
	}
	return res.Elapsed
}

// metricKind keeps the kind label bounded.
func metricKind(k analysis.Kind) string {
	for _, known := range analysis.Kinds() {
		if k == known {
			return string(k)
		}
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
