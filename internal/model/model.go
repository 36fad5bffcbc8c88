// Package model defines the data types flowing through the scraper pipeline.
package model

// Confidence levels reported by the vision model for an extraction.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// TargetType identifies the kind of entity a report is filed against.
type TargetType string

const (
	TargetPhone       TargetType = "PHONE"
	TargetPerson      TargetType = "PERSON"
	TargetBankAccount TargetType = "BANK_ACCOUNT"
)

// Reason categories accepted by the TrustCheck registry.
const (
	ReasonScam  = "SCAM"
	ReasonSpam  = "SPAM"
	ReasonTowar = "TOWAR"
)

// RawPost is a single scraped group post. Produced by the post source,
// consumed read-only by the pipeline.
type RawPost struct {
	ID           string
	URL          string
	Author       string
	Text         string
	Images       []string
	Timestamp    string
	CommentCount int
}

// HasImages reports whether the post carries at least one image URL.
func (p RawPost) HasImages() bool {
	return len(p.Images) > 0
}

// PrefilterVerdict is the cheap text-only triage of a post before any
// image analysis is paid for.
type PrefilterVerdict struct {
	IsScamReport   bool   `json:"is_scam_report"`
	HasContactInfo bool   `json:"has_contact_info"`
	Priority       string `json:"priority"`
}

// ExtractedRecord holds the scammer identity fields recovered from one
// screenshot. After validation every present field has passed its format
// check; empty string means absent.
type ExtractedRecord struct {
	ScammerName     FlexString `json:"scammer_name"`
	PhoneNumber     FlexString `json:"phone_number"`
	BankAccount     FlexString `json:"bank_account"`
	Email           FlexString `json:"email"`
	FacebookLink    FlexString `json:"facebook_link"`
	ScamDescription FlexString `json:"scam_description"`
	Confidence      FlexString `json:"confidence"`
	ScreenshotType  FlexString `json:"screenshot_type"`
}

// TargetSelection is the canonical (type, value) pair chosen to represent
// the reported identity. Never built from a record without an identifying
// field.
type TargetSelection struct {
	Type  TargetType
	Value string
}

// ReportPayload is the outbound submission object for the registry. Built
// once per successful candidate, sent exactly once, then discarded.
type ReportPayload struct {
	TargetType  TargetType `json:"targetType"`
	TargetValue string     `json:"targetValue"`
	Rating      int        `json:"rating"`
	Reason      string     `json:"reason"`
	Comment     string     `json:"comment"`

	// OSINT fields.
	ReportedEmail  string `json:"reportedEmail,omitempty"`
	FacebookLink   string `json:"facebookLink,omitempty"`
	ScreenshotURL  string `json:"screenshotUrl,omitempty"`
	ScreenshotPath string `json:"screenshotPath,omitempty"`

	// Scammer attributes.
	ScammerName string `json:"scammerName,omitempty"`
	BankAccount string `json:"bankAccount,omitempty"`

	// Metadata.
	IsAutoGenerated bool   `json:"isAutoGenerated"`
	SourceURL       string `json:"sourceUrl,omitempty"`
}
