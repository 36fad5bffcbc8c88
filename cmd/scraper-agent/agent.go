package main

import (
	"go.uber.org/zap"

	"github.com/trustcheck/scraper-agent/internal/config"
	"github.com/trustcheck/scraper-agent/internal/fetcher"
	"github.com/trustcheck/scraper-agent/internal/pipeline"
	"github.com/trustcheck/scraper-agent/internal/scheduler"
	"github.com/trustcheck/scraper-agent/internal/vision"
	"github.com/trustcheck/scraper-agent/pkg/apify"
	"github.com/trustcheck/scraper-agent/pkg/trustcheck"
)

// buildScheduler wires the collaborators. Missing credentials abort here,
// before any loop starts.
func buildScheduler(cfg *config.Config) (*scheduler.Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := zap.L()

	analyzer := vision.New(vision.Config{
		APIKey:         cfg.OpenAI.Key,
		VisionModel:    cfg.OpenAI.VisionModel,
		PrefilterModel: cfg.OpenAI.PrefilterModel,
	}, log.Named("vision"))

	registry := trustcheck.NewClient(cfg.Registry.BaseURL, cfg.Registry.BotToken)
	source := apify.NewClient(cfg.Apify.Token)
	images := fetcher.New(log.Named("fetcher"))

	processor := pipeline.NewProcessor(analyzer, registry, images, log.Named("pipeline"))

	return scheduler.New(source, processor, scheduler.Options{
		GroupURL: cfg.Scraper.GroupURL,
		MaxPosts: cfg.Scraper.MaxPostsPerRun,
		DaysBack: cfg.Scraper.DaysBack,
		Interval: cfg.Scraper.Interval(),
		Cooldown: cfg.Scraper.Cooldown(),
		PostPace: cfg.Scraper.PostPace(),
	}, log.Named("scheduler")), nil
}
