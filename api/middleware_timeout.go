package api

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/config"
)

// timeoutWriter buffers a handler's response in its own header map and body
// so a handler that outlives its deadline never touches the real writer
type timeoutWriter struct {
	h    http.Header
	body bytes.Buffer

	mu          sync.Mutex
	code        int
	wroteHeader bool
	timedOut    bool
}

func newTimeoutWriter() *timeoutWriter {
	return &timeoutWriter{h: make(http.Header)}
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.code = code
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.code = http.StatusOK
	}
	return tw.body.Write(b)
}

// flush copies the buffered response to w. Only call it once the handler returned.
func (tw *timeoutWriter) flush(w http.ResponseWriter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	dst := w.Header()
	for k, vv := range tw.h {
		dst[k] = vv
	}
	code := tw.code
	if !tw.wroteHeader {
		code = http.StatusOK
	}
	w.WriteHeader(code)
	if tw.body.Len() > 0 {
		w.Write(tw.body.Bytes())
	}
}

// TimeoutMiddleware adds request timeout to prevent long-running requests
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			tw := newTimeoutWriter()
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r)
			}()

			select {
			case <-done:
				tw.flush(w)
			case <-ctx.Done():
				tw.mu.Lock()
				tw.timedOut = true
				tw.mu.Unlock()
				if ctx.Err() == context.DeadlineExceeded {
					zap.S().Warnw("request timeout",
						"path", r.URL.Path,
						"method", r.Method,
						"timeout", timeout)
					w.Header().Set("Content-Type", "application/json")
					config.ErrorStatus("request timeout", http.StatusRequestTimeout, w, ctx.Err())
				}
			}
		})
	}
}
