// Package report maps candidate records onto TrustCheck submission payloads.
package report

import (
	"strings"

	"github.com/trustcheck/scraper-agent/internal/model"
)

// defaultComment is used when the extraction produced no description at all.
const defaultComment = "Oszustwo zgłoszone przez społeczność"

// Keyword tables for the reason category, checked in order. SCAM doubles as
// the fallback: absence of signal flags the most serious category.
var (
	scamKeywords  = []string{"wyłudzenie", "oszustwo", "scam", "przekręt"}
	spamKeywords  = []string{"spam", "reklama", "telemarketing"}
	towarKeywords = []string{"towar", "nie wysłał", "nie otrzymał"}
)

// Rating converts the model's confidence into the registry's 1-3 severity
// scale. Lower is more certain. Unknown or missing confidence maps to the
// middle of the scale.
func Rating(confidence string) int {
	switch strings.ToLower(strings.TrimSpace(confidence)) {
	case model.ConfidenceHigh:
		return 1
	case model.ConfidenceLow:
		return 3
	default:
		return 2
	}
}

// Reason derives the registry category from the free-text scam description.
// Case-insensitive substring scan, first matching category wins.
func Reason(description string) string {
	desc := strings.ToLower(description)

	if containsAny(desc, scamKeywords) {
		return model.ReasonScam
	}
	if containsAny(desc, spamKeywords) {
		return model.ReasonSpam
	}
	if containsAny(desc, towarKeywords) {
		return model.ReasonTowar
	}
	return model.ReasonScam
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Assemble builds the outbound payload for one candidate. screenshotURL is
// the original CDN link, screenshotPath the registry-side copy if the relay
// succeeded (empty is fine, submission proceeds without it).
func Assemble(rec model.ExtractedRecord, target model.TargetSelection, post model.RawPost, screenshotURL, screenshotPath string) model.ReportPayload {
	comment := rec.ScamDescription.String()
	if strings.TrimSpace(comment) == "" {
		comment = defaultComment
	}

	return model.ReportPayload{
		TargetType:  target.Type,
		TargetValue: target.Value,
		Rating:      Rating(rec.Confidence.String()),
		Reason:      Reason(rec.ScamDescription.String()),
		Comment:     comment,

		ReportedEmail:  rec.Email.String(),
		FacebookLink:   rec.FacebookLink.String(),
		ScreenshotURL:  screenshotURL,
		ScreenshotPath: screenshotPath,

		ScammerName: rec.ScammerName.String(),
		BankAccount: rec.BankAccount.String(),

		IsAutoGenerated: true,
		SourceURL:       post.URL,
	}
}
