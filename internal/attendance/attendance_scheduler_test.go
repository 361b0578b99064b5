package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNextSweep(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)

	tests := []struct {
		name string
		now  time.Time
		at   string
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2024, 3, 1, 23, 0, 0, 0, wib),
			at:   "23:30",
			want: time.Date(2024, 3, 1, 23, 30, 0, 0, wib),
		},
		{
			name: "already passed today",
			now:  time.Date(2024, 3, 1, 9, 0, 0, 0, wib),
			at:   "00:05",
			want: time.Date(2024, 3, 2, 0, 5, 0, 0, wib),
		},
		{
			name: "exactly now rolls over",
			now:  time.Date(2024, 3, 1, 0, 5, 0, 0, wib),
			at:   "00:05",
			want: time.Date(2024, 3, 2, 0, 5, 0, 0, wib),
		},
		{
			name: "now given in another zone",
			now:  time.Date(2024, 2, 29, 17, 30, 0, 0, time.UTC), // 00:30 on 1 March in WIB
			at:   "00:05",
			want: time.Date(2024, 3, 2, 0, 5, 0, 0, wib),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextSweep(tt.now, tt.at, wib)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := NextSweep(time.Now(), "midnight", time.UTC)
	assert.Error(t, err)
}

func TestNextSweep_CronSpec(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)

	// Weekdays only: Friday evening skips to Monday.
	got, err := NextSweep(time.Date(2024, 3, 1, 20, 0, 0, 0, wib), "30 0 * * 1-5", wib)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 4, 0, 30, 0, 0, wib).Equal(got), "got %s", got)

	_, err = SweepSchedule("61 0 * * *")
	assert.Error(t, err)
}

func TestMissedSweepDay(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	sched, err := SweepSchedule("00:05")
	require.NoError(t, err)

	day, missed := MissedSweepDay(time.Date(2024, 3, 1, 9, 0, 0, 0, wib), sched, wib)
	assert.True(t, missed)
	assert.Equal(t, "2024-02-29", day)

	_, missed = MissedSweepDay(time.Date(2024, 3, 1, 0, 2, 0, 0, wib), sched, wib)
	assert.False(t, missed, "sweep time not reached yet")

	day, missed = MissedSweepDay(time.Date(2024, 3, 1, 0, 5, 0, 0, wib), sched, wib)
	assert.True(t, missed)
	assert.Equal(t, "2024-02-29", day)
}

type closeOutRecorder struct {
	Service
	days chan string
}

func (r *closeOutRecorder) CloseOutDay(_ context.Context, date string) (CloseOutResult, error) {
	r.days <- date
	return CloseOutResult{Date: date}, nil
}

func TestRunSweepScheduler_CatchesUpOnStart(t *testing.T) {
	svc := &closeOutRecorder{days: make(chan string, 4)}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		// 00:00 has always passed by the time the test runs.
		done <- RunSweepScheduler(ctx, svc, "00:00", time.UTC, nil, zap.NewNop())
	}()

	select {
	case day := <-svc.days:
		assert.Equal(t, time.Now().UTC().AddDate(0, 0, -1).Format(DateLayout), day)
	case <-time.After(2 * time.Second):
		t.Fatal("no catch-up close-out")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunSweepScheduler_InvalidSchedule(t *testing.T) {
	err := RunSweepScheduler(context.Background(), &closeOutRecorder{}, "25:99", time.UTC, nil, zap.NewNop())
	assert.Error(t, err)
}
