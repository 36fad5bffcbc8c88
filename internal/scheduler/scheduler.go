// Package scheduler drives the pipeline continuously against the live post
// source. One logical thread of control: batches are fetched on a fixed
// interval and posts are processed sequentially with pacing in between. A
// failure anywhere inside a batch is caught here, logged, and followed by a
// cooldown; the process only stops on explicit cancellation.
package scheduler

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/trustcheck/scraper-agent/internal/model"
)

// PostSource fetches a bounded batch of recent posts.
type PostSource interface {
	FetchRecentPosts(ctx context.Context, groupURL string, maxPosts, daysBack int) ([]model.RawPost, error)
}

// PostProcessor runs one post through the pipeline.
type PostProcessor interface {
	ProcessPost(ctx context.Context, post model.RawPost) bool
}

// Options configures the polling loop.
type Options struct {
	GroupURL string
	MaxPosts int
	DaysBack int
	Interval time.Duration // sleep between batches
	Cooldown time.Duration // sleep after a failed batch
	PostPace time.Duration // minimum gap between posts
}

// Scheduler owns the outer loop.
type Scheduler struct {
	source    PostSource
	processor PostProcessor
	opts      Options
	pace      *rate.Limiter
	log       *zap.Logger
}

// New creates a scheduler.
func New(source PostSource, processor PostProcessor, opts Options, log *zap.Logger) *Scheduler {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.PostPace > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.PostPace), 1)
	}

	return &Scheduler{
		source:    source,
		processor: processor,
		opts:      opts,
		pace:      limiter,
		log:       log,
	}
}

// Run polls until ctx is cancelled. It never returns because of bad input or
// collaborator failures; only cancellation ends the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started",
		zap.String("group_url", s.opts.GroupURL),
		zap.Duration("interval", s.opts.Interval))

	for {
		err := s.runBatch(ctx)

		if ctx.Err() != nil {
			s.log.Info("scheduler stopped")
			return ctx.Err()
		}

		delay := s.opts.Interval
		if err != nil {
			s.log.Error("batch failed, cooling down", zap.Error(err), zap.Duration("cooldown", s.opts.Cooldown))
			delay = s.opts.Cooldown
		}

		if err := sleep(ctx, delay); err != nil {
			s.log.Info("scheduler stopped")
			return err
		}
	}
}

// RunBatch fetches and processes a single batch. Exposed for one-shot scans
// and the HTTP trigger.
func (s *Scheduler) RunBatch(ctx context.Context) error {
	return s.runBatch(ctx)
}

func (s *Scheduler) runBatch(ctx context.Context) (err error) {
	// A panic inside one batch must not take the process down.
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("batch panicked: %v", r)
		}
	}()

	posts, err := s.source.FetchRecentPosts(ctx, s.opts.GroupURL, s.opts.MaxPosts, s.opts.DaysBack)
	if err != nil {
		return eris.Wrap(err, "fetch recent posts")
	}

	withImages := make([]model.RawPost, 0, len(posts))
	for _, post := range posts {
		if post.HasImages() {
			withImages = append(withImages, post)
		}
	}
	s.log.Info("batch fetched",
		zap.Int("posts", len(posts)),
		zap.Int("with_images", len(withImages)))

	var processed, submitted int
	for _, post := range withImages {
		if err := s.pace.Wait(ctx); err != nil {
			return eris.Wrap(err, "pacing wait")
		}

		if s.processor.ProcessPost(ctx, post) {
			submitted++
		}
		processed++
	}

	s.log.Info("batch finished",
		zap.Int("processed", processed),
		zap.Int("submitted", submitted))
	return nil
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
