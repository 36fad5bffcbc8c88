// Package pipeline runs the per-post control flow: text prefilter, per-image
// extraction, dedup guard, screenshot relay, report submission.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/trustcheck/scraper-agent/internal/classify"
	"github.com/trustcheck/scraper-agent/internal/fetcher"
	"github.com/trustcheck/scraper-agent/internal/model"
	"github.com/trustcheck/scraper-agent/internal/normalize"
	"github.com/trustcheck/scraper-agent/internal/report"
)

// maxImagesPerPost bounds how many screenshots of one post are analyzed.
const maxImagesPerPost = 3

// Analyzer is the vision collaborator.
type Analyzer interface {
	AnalyzePostText(ctx context.Context, text string) (model.PrefilterVerdict, error)
	AnalyzeScreenshot(ctx context.Context, imageData []byte, mime string) (model.ExtractedRecord, error)
}

// Registry is the report backend collaborator.
type Registry interface {
	SubmitReport(ctx context.Context, payload model.ReportPayload) error
	Exists(ctx context.Context, targetValue string) (bool, error)
	UploadScreenshot(ctx context.Context, data []byte, contentType string) (string, error)
}

// ImageSource downloads post images.
type ImageSource interface {
	Fetch(ctx context.Context, url string) (*fetcher.Image, error)
}

// Processor wires the collaborators for per-post processing.
type Processor struct {
	vision   Analyzer
	registry Registry
	images   ImageSource
	log      *zap.Logger
}

// NewProcessor creates a post processor.
func NewProcessor(vision Analyzer, registry Registry, images ImageSource, log *zap.Logger) *Processor {
	return &Processor{
		vision:   vision,
		registry: registry,
		images:   images,
		log:      log,
	}
}

// ProcessPost runs one post through the pipeline. It returns true when a
// report was submitted and acknowledged. Everything that can go wrong with a
// single image is logged and skipped; the first successful submission ends
// work on the post.
func (p *Processor) ProcessPost(ctx context.Context, post model.RawPost) bool {
	log := p.log.With(zap.String("post_id", post.ID), zap.String("post_url", post.URL))

	if !p.prefilter(ctx, log, post) {
		log.Info("skipping post, does not look like a scam report")
		return false
	}

	images := post.Images
	if len(images) > maxImagesPerPost {
		images = images[:maxImagesPerPost]
	}

	for idx, imageURL := range images {
		if ctx.Err() != nil {
			return false
		}
		if p.processImage(ctx, log.With(zap.Int("image_index", idx)), post, imageURL) {
			return true
		}
	}

	log.Info("no report produced for post")
	return false
}

// prefilter runs the cheap text triage. Fail-open: any failure of the stage
// defaults to proceeding, because silently dropping real scam reports is
// worse than one wasted vision call.
func (p *Processor) prefilter(ctx context.Context, log *zap.Logger, post model.RawPost) bool {
	verdict, err := p.vision.AnalyzePostText(ctx, post.Text)
	if err != nil {
		log.Warn("prefilter failed, proceeding anyway", zap.Error(err))
		return true
	}

	log.Debug("prefilter verdict",
		zap.Bool("is_scam_report", verdict.IsScamReport),
		zap.Bool("has_contact_info", verdict.HasContactInfo),
		zap.String("priority", verdict.Priority))

	return verdict.IsScamReport
}

// processImage runs extraction through submission for one screenshot.
// Returns true only on an acknowledged submission.
func (p *Processor) processImage(ctx context.Context, log *zap.Logger, post model.RawPost, imageURL string) bool {
	img, err := p.images.Fetch(ctx, imageURL)
	if err != nil {
		log.Warn("image download failed", zap.String("image_url", imageURL), zap.Error(err))
		return false
	}

	raw, err := p.vision.AnalyzeScreenshot(ctx, img.Data, img.ContentType)
	if err != nil {
		log.Warn("screenshot analysis yielded no data", zap.Error(err))
		return false
	}

	rec, ok := normalize.Record(raw)
	if !ok {
		log.Info("skipping image, no identifying fields after validation")
		return false
	}

	target, ok := classify.Select(rec)
	if !ok {
		log.Info("skipping image, no report target")
		return false
	}
	log = log.With(zap.String("target_type", string(target.Type)), zap.String("target_value", target.Value))

	exists, err := p.registry.Exists(ctx, target.Value)
	if err != nil {
		// Best-effort guard: on a failed check, lean toward reporting.
		log.Warn("dedup check failed, assuming identity is new", zap.Error(err))
		exists = false
	}
	if exists {
		log.Info("skipping image, identity already reported")
		return false
	}

	// Screenshot relay is best-effort; the report goes out without it.
	screenshotPath, err := p.registry.UploadScreenshot(ctx, img.Data, img.ContentType)
	if err != nil {
		log.Warn("screenshot relay failed, submitting without it", zap.Error(err))
		screenshotPath = ""
	}

	payload := report.Assemble(rec, target, post, imageURL, screenshotPath)
	if err := p.registry.SubmitReport(ctx, payload); err != nil {
		log.Warn("report submission failed", zap.Error(err))
		return false
	}

	log.Info("report submitted",
		zap.Int("rating", payload.Rating),
		zap.String("reason", payload.Reason))
	return true
}
