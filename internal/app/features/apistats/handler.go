// Package apistats serves the admin view of per-endpoint request statistics.
package apistats

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratacms/internal/app/features/errors"
	apistatsstore "github.com/dalemusser/stratacms/internal/app/store/apistats"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultSince is the window used when ?since= is absent.
const DefaultSince = 24 * time.Hour

// MaxSince bounds how far back a single request may look.
const MaxSince = 366 * 24 * time.Hour

// Reader is the part of the apistats store the handler needs.
type Reader interface {
	GetSummary(ctx context.Context, start, end time.Time) ([]apistatsstore.Summary, error)
	GetRange(ctx context.Context, statType apistatsstore.StatType, start, end time.Time) ([]apistatsstore.Bucket, error)
}

// Handler handles API stats HTTP requests.
type Handler struct {
	store          Reader
	bucketDuration time.Duration
	errLog         *errorsfeature.ErrorLogger
	logger         *zap.Logger
	now            func() time.Time
}

// NewHandler creates a new API stats handler. bucketDuration is reported
// back to clients so they can label the series.
func NewHandler(store Reader, bucketDuration time.Duration, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:          store,
		bucketDuration: bucketDuration,
		errLog:         errLog,
		logger:         logger,
		now:            time.Now,
	}
}

// SummaryResponse is returned by GET /api/admin/stats.
type SummaryResponse struct {
	Since          string                  `json:"since"`
	Start          time.Time               `json:"start"`
	End            time.Time               `json:"end"`
	BucketDuration string                  `json:"bucketDuration"`
	Stats          []apistatsstore.Summary `json:"stats"`
}

// SeriesPoint is one bucket of a time series.
type SeriesPoint struct {
	Bucket       time.Time `json:"bucket"`
	Requests     int64     `json:"requests"`
	ClientErrors int64     `json:"clientErrors"`
	ServerErrors int64     `json:"serverErrors"`
	AvgMs        float64   `json:"avgMs"`
	MinMs        int64     `json:"minMs"`
	MaxMs        int64     `json:"maxMs"`
}

// SeriesResponse is returned by GET /api/admin/stats/{statType}.
type SeriesResponse struct {
	StatType apistatsstore.StatType `json:"statType"`
	Since    string                 `json:"since"`
	Start    time.Time              `json:"start"`
	End      time.Time              `json:"end"`
	Points   []SeriesPoint          `json:"points"`
}

// ServeSummary handles GET /api/admin/stats?since=24h.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	since, label, ok := parseSince(query.Get(r, "since"))
	if !ok {
		jsonutil.BadRequest(w, "since must be a duration such as 1h, 24h or 7d")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	end := h.now().UTC()
	start := end.Add(-since)
	summaries, err := h.store.GetSummary(ctx, start, end)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load api stats summary", err)
		return
	}

	jsonutil.OK(w, SummaryResponse{
		Since:          label,
		Start:          start,
		End:            end,
		BucketDuration: h.bucketDuration.String(),
		Stats:          summaries,
	})
}

// ServeSeries handles GET /api/admin/stats/{statType}?since=24h.
func (h *Handler) ServeSeries(w http.ResponseWriter, r *http.Request) {
	statType, ok := lookupStatType(chi.URLParam(r, "statType"))
	if !ok {
		jsonutil.NotFound(w, "unknown stat type")
		return
	}
	since, label, ok := parseSince(query.Get(r, "since"))
	if !ok {
		jsonutil.BadRequest(w, "since must be a duration such as 1h, 24h or 7d")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	end := h.now().UTC()
	start := end.Add(-since)
	buckets, err := h.store.GetRange(ctx, statType, start, end)
	if err != nil {
		h.errLog.Internal(w, r, "failed to load api stats series", err)
		return
	}

	points := make([]SeriesPoint, len(buckets))
	for i, b := range buckets {
		points[i] = SeriesPoint{
			Bucket:       b.Bucket,
			Requests:     b.Requests,
			ClientErrors: b.ClientErrors,
			ServerErrors: b.ServerErrors,
			AvgMs:        b.AvgMs(),
			MinMs:        b.MinMs,
			MaxMs:        b.MaxMs,
		}
	}

	jsonutil.OK(w, SeriesResponse{
		StatType: statType,
		Since:    label,
		Start:    start,
		End:      end,
		Points:   points,
	})
}

// parseSince accepts Go durations ("90m", "24h") and whole days ("7d").
// Empty means DefaultSince. The returned label echoes the accepted value.
func parseSince(raw string) (time.Duration, string, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return DefaultSince, "24h", true
	}

	var d time.Duration
	if days, found := strings.CutSuffix(raw, "d"); found {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, "", false
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		var err error
		d, err = time.ParseDuration(raw)
		if err != nil {
			return 0, "", false
		}
	}

	if d <= 0 || d > MaxSince {
		return 0, "", false
	}
	return d, raw, true
}

func lookupStatType(raw string) (apistatsstore.StatType, bool) {
	for _, st := range apistatsstore.AllStatTypes {
		if string(st) == raw {
			return st, true
		}
	}
	return "", false
}
