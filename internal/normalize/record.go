package normalize

import (
	"github.com/trustcheck/scraper-agent/internal/model"
)

// DefaultScamDescription fills in when the model returns no description.
const DefaultScamDescription = "Zgłoszenie z Facebook (auto)."

// Record applies the field normalizers to a freshly parsed extraction.
// Fields that fail validation are cleared rather than reported as errors.
// The second return is false when no identifying field survives, in which
// case the record must be discarded.
func Record(rec model.ExtractedRecord) (model.ExtractedRecord, bool) {
	rec.PhoneNumber = model.FlexString(Phone(rec.PhoneNumber.String()))
	rec.BankAccount = model.FlexString(BankAccount(rec.BankAccount.String()))
	rec.Email = model.FlexString(Email(rec.Email.String()))
	rec.ScammerName = model.FlexString(Text(rec.ScammerName.String()))
	rec.FacebookLink = model.FlexString(Text(rec.FacebookLink.String()))

	if rec.ScamDescription.Empty() {
		rec.ScamDescription = DefaultScamDescription
	}

	hasIdentity := !rec.PhoneNumber.Empty() ||
		!rec.BankAccount.Empty() ||
		!rec.Email.Empty() ||
		!rec.ScammerName.Empty()

	return rec, hasIdentity
}
