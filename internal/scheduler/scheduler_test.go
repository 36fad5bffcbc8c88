package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trustcheck/scraper-agent/internal/model"
)

type fakeSource struct {
	mu      sync.Mutex
	batches [][]model.RawPost
	errs    []error
	calls   int
}

func (f *fakeSource) FetchRecentPosts(ctx context.Context, groupURL string, maxPosts, daysBack int) ([]model.RawPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.batches) {
		return f.batches[i], nil
	}
	return nil, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
	submit    map[string]bool
	panicOn   string
}

func (f *fakeProcessor) ProcessPost(ctx context.Context, post model.RawPost) bool {
	if post.ID == f.panicOn {
		panic("unexpected nil somewhere deep in the pipeline")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, post.ID)
	return f.submit[post.ID]
}

func (f *fakeProcessor) processedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.processed...)
}

func testOptions() Options {
	return Options{
		GroupURL: "https://www.facebook.com/groups/oszustwa",
		MaxPosts: 50,
		DaysBack: 2,
		Interval: time.Hour,
		Cooldown: time.Hour,
	}
}

func TestRunBatchFiltersPostsWithoutImages(t *testing.T) {
	source := &fakeSource{batches: [][]model.RawPost{{
		{ID: "1", Images: []string{"a.jpg"}},
		{ID: "2"},
		{ID: "3", Images: []string{"b.jpg", "c.jpg"}},
	}}}
	processor := &fakeProcessor{submit: map[string]bool{"3": true}}

	s := New(source, processor, testOptions(), zap.NewNop())
	require.NoError(t, s.RunBatch(context.Background()))

	assert.Equal(t, []string{"1", "3"}, processor.processed)
}

func TestRunBatchKeepsOrder(t *testing.T) {
	source := &fakeSource{batches: [][]model.RawPost{{
		{ID: "a", Images: []string{"1.jpg"}},
		{ID: "b", Images: []string{"2.jpg"}},
		{ID: "c", Images: []string{"3.jpg"}},
	}}}
	processor := &fakeProcessor{}

	s := New(source, processor, testOptions(), zap.NewNop())
	require.NoError(t, s.RunBatch(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, processor.processed)
}

func TestRunBatchSourceFailure(t *testing.T) {
	source := &fakeSource{errs: []error{eris.New("actor run failed")}}
	processor := &fakeProcessor{}

	s := New(source, processor, testOptions(), zap.NewNop())
	assert.Error(t, s.RunBatch(context.Background()))
	assert.Empty(t, processor.processed)
}

func TestRunBatchRecoversFromPanic(t *testing.T) {
	source := &fakeSource{batches: [][]model.RawPost{{
		{ID: "1", Images: []string{"a.jpg"}},
		{ID: "boom", Images: []string{"b.jpg"}},
	}}}
	processor := &fakeProcessor{panicOn: "boom"}

	s := New(source, processor, testOptions(), zap.NewNop())
	err := s.RunBatch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, []string{"1"}, processor.processed, "posts before the panic were handled")
}

func TestRunContinuesAfterBatchFailure(t *testing.T) {
	source := &fakeSource{
		errs: []error{eris.New("flaky upstream"), nil},
		batches: [][]model.RawPost{
			nil,
			{{ID: "1", Images: []string{"a.jpg"}}},
		},
	}
	processor := &fakeProcessor{}

	opts := testOptions()
	opts.Interval = 5 * time.Millisecond
	opts.Cooldown = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	s := New(source, processor, opts, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(processor.processedIDs()) > 0
	}, 2*time.Second, 5*time.Millisecond, "loop must survive a failed batch and process the next one")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

func TestRunStopsOnCancellationDuringSleep(t *testing.T) {
	source := &fakeSource{}
	processor := &fakeProcessor{}

	opts := testOptions()
	opts.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	s := New(source, processor, opts, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let the first batch complete, then cancel mid-sleep.
	assert.Eventually(t, func() bool { return source.callCount() > 0 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}

func TestRunBatchPacingRespectsCancellation(t *testing.T) {
	source := &fakeSource{batches: [][]model.RawPost{{
		{ID: "1", Images: []string{"a.jpg"}},
		{ID: "2", Images: []string{"b.jpg"}},
	}}}
	processor := &fakeProcessor{}

	opts := testOptions()
	opts.PostPace = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	s := New(source, processor, opts, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- s.RunBatch(ctx) }()

	assert.Eventually(t, func() bool { return len(processor.processedIDs()) == 1 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pacing wait did not honor cancellation")
	}
}
