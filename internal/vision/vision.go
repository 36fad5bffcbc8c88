// Package vision wraps the OpenAI chat API for post triage and screenshot
// extraction. It is the only package allowed to assume structure in model
// output, and even then only through the extract package.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/trustcheck/scraper-agent/internal/extract"
	"github.com/trustcheck/scraper-agent/internal/model"
)

const (
	defaultVisionModel    = "gpt-4o"
	defaultPrefilterModel = "gpt-4o-mini"

	screenshotMaxTokens = 900
	prefilterMaxTokens  = 120

	completionAttempts = 3
	completionRetryGap = time.Second
)

// Config holds the OpenAI settings for the analyzer.
type Config struct {
	APIKey         string
	BaseURL        string
	VisionModel    string
	PrefilterModel string
}

// Analyzer runs the two inference calls the pipeline needs.
type Analyzer struct {
	client         *openai.Client
	visionModel    string
	prefilterModel string
	log            *zap.Logger
}

// New creates an analyzer. BaseURL is overridable for tests.
func New(cfg Config, log *zap.Logger) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVisionModel
	}
	prefilterModel := cfg.PrefilterModel
	if prefilterModel == "" {
		prefilterModel = defaultPrefilterModel
	}

	return &Analyzer{
		client:         openai.NewClientWithConfig(clientCfg),
		visionModel:    visionModel,
		prefilterModel: prefilterModel,
		log:            log,
	}
}

// AnalyzePostText runs the cheap text triage on a post body. The caller owns
// the fail-open policy for errors.
func (a *Analyzer) AnalyzePostText(ctx context.Context, text string) (model.PrefilterVerdict, error) {
	req := openai.ChatCompletionRequest{
		Model:     a.prefilterModel,
		MaxTokens: prefilterMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(prefilterPrompt, text),
			},
		},
	}

	content, err := a.complete(ctx, req)
	if err != nil {
		return model.PrefilterVerdict{}, err
	}

	var verdict model.PrefilterVerdict
	if err := extract.Unmarshal(content, &verdict); err != nil {
		return model.PrefilterVerdict{}, eris.Wrap(err, "vision: parse prefilter verdict")
	}
	return verdict, nil
}

// AnalyzeScreenshot sends the image to the vision model and parses the
// extraction JSON. The returned record is raw; field normalization is the
// caller's next step.
func (a *Analyzer) AnalyzeScreenshot(ctx context.Context, imageData []byte, mime string) (model.ExtractedRecord, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(imageData))

	req := openai.ChatCompletionRequest{
		Model:       a.visionModel,
		MaxTokens:   screenshotMaxTokens,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: screenshotPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	content, err := a.complete(ctx, req)
	if err != nil {
		return model.ExtractedRecord{}, err
	}

	var rec model.ExtractedRecord
	if err := extract.Unmarshal(content, &rec); err != nil {
		return model.ExtractedRecord{}, eris.Wrap(err, "vision: parse screenshot extraction")
	}
	return rec, nil
}

// complete performs the chat call with a small retry on transport failures.
func (a *Analyzer) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt < completionAttempts; attempt++ {
		if attempt > 0 {
			a.log.Debug("retrying completion",
				zap.String("model", req.Model),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))

			timer := time.NewTimer(completionRetryGap)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", eris.Wrap(ctx.Err(), "vision: wait for retry")
			case <-timer.C:
			}
		}

		resp, err := a.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if len(resp.Choices) == 0 {
			return "", eris.New("vision: completion returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", eris.Wrapf(lastErr, "vision: completion failed after %d attempts", completionAttempts)
}
