package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/safetravels/internal/infra/config"
)

const maxReplayBody = 1 << 20

var errReplayBodyTooLarge = errors.New("request body too large to replay")

// retryUpstreamFailures replays POST requests whose response signals a
// transient upstream failure (places API or catalog backend). Every
// endpoint is a pure computation over its body, so a replay is safe.
// The final attempt's response is the one written to the client.
func retryUpstreamFailures(next http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return next
	}
	skip := make(map[string]bool, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		skip[path] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || skip[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		body, err := bufferBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errReplayBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}

		var out *bufferedResponse
		for attempt := 1; ; attempt++ {
			out = newBufferedResponse()
			replay := r.Clone(r.Context())
			replay.Body = io.NopCloser(bytes.NewReader(body))
			replay.ContentLength = int64(len(body))
			next.ServeHTTP(out, replay)

			if !out.transient() || attempt >= cfg.MaxAttempts {
				break
			}
			backoff := cfg.BaseBackoff << (attempt - 1)
			logger.Warn("upstream failure, replaying request", "path", r.URL.Path, "status", out.status, "attempt", attempt, "backoff", backoff)
			if !sleepCtx(r, backoff) {
				break
			}
		}
		out.flushTo(w)
	})
}

func bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxReplayBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxReplayBody {
		return nil, errReplayBodyTooLarge
	}
	return data, nil
}

// sleepCtx waits for d unless the request is cancelled first.
func sleepCtx(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

// bufferedResponse holds one attempt's response until it is known to be
// final.
type bufferedResponse struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header)}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

// Flush satisfies http.Flusher for gin; output is held until flushTo.
func (b *bufferedResponse) Flush() {}

func (b *bufferedResponse) transient() bool {
	switch b.status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range b.header {
		dst[k] = append([]string(nil), v...)
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(b.body.Bytes())
}
