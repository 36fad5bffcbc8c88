package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trustcheck/scraper-agent/internal/model"
)

func TestRecordNormalizesFields(t *testing.T) {
	rec, ok := Record(model.ExtractedRecord{
		PhoneNumber:     "600 111 222",
		BankAccount:     "pl61 1090 1014 0000 0712 1981 2874",
		Email:           " scam@example.com ",
		ScammerName:     "  Jan Kowalski ",
		FacebookLink:    "   ",
		ScamDescription: "oszustwo na OLX",
	})

	assert.True(t, ok)
	assert.Equal(t, "+48600111222", rec.PhoneNumber.String())
	assert.Equal(t, "PL61109010140000071219812874", rec.BankAccount.String())
	assert.Equal(t, "scam@example.com", rec.Email.String())
	assert.Equal(t, "Jan Kowalski", rec.ScammerName.String())
	assert.True(t, rec.FacebookLink.Empty())
	assert.Equal(t, "oszustwo na OLX", rec.ScamDescription.String())
}

func TestRecordClearsInvalidFields(t *testing.T) {
	rec, ok := Record(model.ExtractedRecord{
		PhoneNumber: "12345",
		BankAccount: "DE61109010140000071219812874",
		Email:       "not-an-email",
		ScammerName: "Jan",
	})

	assert.True(t, ok, "name alone keeps the record usable")
	assert.True(t, rec.PhoneNumber.Empty())
	assert.True(t, rec.BankAccount.Empty())
	assert.True(t, rec.Email.Empty())
}

func TestRecordNoIdentifyingField(t *testing.T) {
	_, ok := Record(model.ExtractedRecord{
		PhoneNumber:     "12345",
		Email:           "broken@",
		ScamDescription: "podejrzany post",
	})
	assert.False(t, ok)
}

func TestRecordDefaultsDescription(t *testing.T) {
	rec, ok := Record(model.ExtractedRecord{PhoneNumber: "600111222"})
	assert.True(t, ok)
	assert.Equal(t, DefaultScamDescription, rec.ScamDescription.String())
}
