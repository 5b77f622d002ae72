package mdcards

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolveWorkers(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit is capped",
			workers: 100,
			want:    MaxWorkers,
		},
		{
			name:    "zero uses GOMAXPROCS",
			workers: 0,
			want:    max(MinWorkers, min(gomaxprocs, MaxWorkers)),
		},
		{
			name:    "negative uses GOMAXPROCS",
			workers: -3,
			want:    max(MinWorkers, min(gomaxprocs, MaxWorkers)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolveWorkers(tt.workers)
			if got != tt.want {
				t.Errorf("ResolveWorkers(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

// countingEngine records the peak number of concurrent ToHTML calls.
type countingEngine struct {
	active atomic.Int32
	peak   atomic.Int32
}

func (e *countingEngine) ToHTML(_ context.Context, content string) (string, error) {
	n := e.active.Add(1)
	defer e.active.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return "<p>" + content + "</p>", nil
}

func TestBuildAll_OrderAndErrors(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)

	inputs := make([]Input, 10)
	for i := range inputs {
		inputs[i] = Input{Markdown: fmt.Sprintf("# Page %d", i)}
	}
	inputs[3] = Input{}
	inputs[7].Cards = Deck{{Question: "Q", Answer: "A"}}

	results := b.BuildAll(context.Background(), inputs, 4)
	if len(results) != len(inputs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(inputs))
	}

	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d].Index = %d", i, r.Index)
		}
		if i == 3 {
			var verr *ValidationError
			if !errors.As(r.Err, &verr) {
				t.Errorf("results[3].Err = %v, want *ValidationError", r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Errorf("results[%d].Err = %v", i, r.Err)
			continue
		}
		if want := fmt.Sprintf("Page %d", i); r.Result.Title != want {
			t.Errorf("results[%d].Title = %q, want %q", i, r.Result.Title, want)
		}
		if r.Result.HasEmbed() != (i == 7) {
			t.Errorf("results[%d].HasEmbed() = %v", i, r.Result.HasEmbed())
		}
	}
}

func TestBuildAll_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	engine := &countingEngine{}
	b := newTestBuilder(t, withMockEngine(engine))

	inputs := make([]Input, 12)
	for i := range inputs {
		inputs[i] = Input{Markdown: "x"}
	}

	for _, r := range b.BuildAll(context.Background(), inputs, 3) {
		if r.Err != nil {
			t.Fatalf("BuildAll() error: %v", r.Err)
		}
	}
	if peak := engine.peak.Load(); peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestBuildAll_Empty(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	if got := b.BuildAll(context.Background(), nil, 2); got != nil {
		t.Errorf("BuildAll(nil) = %v, want nil", got)
	}
}

func TestBuildAll_CancelledContext(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := b.BuildAll(ctx, []Input{{Markdown: "a"}, {Markdown: "b"}}, 2)
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
		if r.Result != nil {
			t.Errorf("results[%d].Result = %v, want nil", i, r.Result)
		}
	}
}
