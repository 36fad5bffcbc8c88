// Package classify picks the canonical report target for a candidate record.
package classify

import (
	"github.com/trustcheck/scraper-agent/internal/model"
)

// Select returns the (type, value) pair that will represent the reported
// identity, or false when the record carries nothing identifying.
//
// The priority order is a fixed policy: a phone number is the most
// actionable identity, an email beats a bare name because it is unique, and
// a bank account alone is the weakest signal. First match wins; fields are
// never merged.
func Select(rec model.ExtractedRecord) (model.TargetSelection, bool) {
	switch {
	case !rec.PhoneNumber.Empty():
		return model.TargetSelection{Type: model.TargetPhone, Value: rec.PhoneNumber.String()}, true
	case !rec.Email.Empty():
		return model.TargetSelection{Type: model.TargetPerson, Value: rec.Email.String()}, true
	case !rec.ScammerName.Empty():
		return model.TargetSelection{Type: model.TargetPerson, Value: rec.ScammerName.String()}, true
	case !rec.BankAccount.Empty():
		return model.TargetSelection{Type: model.TargetBankAccount, Value: rec.BankAccount.String()}, true
	}
	return model.TargetSelection{}, false
}
