// Package apistats provides middleware for tracking API request statistics.
package apistats

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/stratacms/internal/app/store/apistats"
	"go.uber.org/zap"
)

// Sink persists one observation. *apistats.Store satisfies it.
type Sink interface {
	Record(ctx context.Context, statType apistats.StatType, bucketDuration time.Duration, durationMs int64, status int) error
}

// Recorder records API statistics off the request path.
// It is shared by every route group.
type Recorder struct {
	sink           Sink
	logger         *zap.Logger
	bucketDuration time.Duration
	timeout        time.Duration

	wg sync.WaitGroup
}

// NewRecorder creates a new API stats recorder.
func NewRecorder(sink Sink, logger *zap.Logger, bucketDuration time.Duration) *Recorder {
	if bucketDuration <= 0 {
		bucketDuration = time.Hour
	}
	return &Recorder{
		sink:           sink,
		logger:         logger,
		bucketDuration: bucketDuration,
		timeout:        5 * time.Second,
	}
}

// BucketDuration returns the bucket size used for new observations.
func (r *Recorder) BucketDuration() time.Duration {
	return r.bucketDuration
}

// Record stores one observation asynchronously.
func (r *Recorder) Record(statType apistats.StatType, durationMs int64, status int) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.sink.Record(ctx, statType, r.bucketDuration, durationMs, status); err != nil {
			r.logger.Error("failed to record API stats",
				zap.String("stat_type", string(statType)),
				zap.Int64("duration_ms", durationMs),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until in-flight observations are written or ctx is done.
// Shutdown calls it so the last requests are not lost.
func (r *Recorder) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// MiddlewareWithRecorder returns HTTP middleware that times each request and
// records it under statType. If recorder is nil, stats recording is skipped
// (useful for testing).
func MiddlewareWithRecorder(recorder *Recorder, statType apistats.StatType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			recorder.Record(statType, time.Since(start).Milliseconds(), wrapped.statusCode)
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code.
type responseWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
