package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakePruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 3, f.err
}

func TestAPIStatsRetentionJob(t *testing.T) {
	p := &fakePruner{}
	job := APIStatsRetentionJob(p, 90*24*time.Hour, zap.NewNop())

	if job.Name != APIStatsRetentionName || job.Interval != time.Hour {
		t.Errorf("job = %s every %v", job.Name, job.Interval)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := time.Now().UTC().Add(-90 * 24 * time.Hour)
	if d := p.cutoff.Sub(want); d < -time.Second || d > time.Second {
		t.Errorf("cutoff = %v, want ~%v", p.cutoff, want)
	}
}

func TestAPIStatsRetentionJob_Disabled(t *testing.T) {
	p := &fakePruner{}
	if err := APIStatsRetentionJob(p, 0, zap.NewNop()).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if p.calls != 0 {
		t.Errorf("DeleteOlderThan called %d times with retention disabled", p.calls)
	}
}

func TestAPIStatsRetentionJob_Error(t *testing.T) {
	p := &fakePruner{err: errors.New("db down")}
	if err := APIStatsRetentionJob(p, time.Hour, zap.NewNop()).Run(context.Background()); err == nil {
		t.Error("Run() error = nil, want store error")
	}
}
