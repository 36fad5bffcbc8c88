package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want FlexString
	}{
		{name: "plain string", raw: `"600111222"`, want: "600111222"},
		{name: "number", raw: `600111222`, want: "600111222"},
		{name: "null", raw: `null`, want: ""},
		{name: "bool", raw: `true`, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFlexStringEmpty(t *testing.T) {
	assert.True(t, FlexString("").Empty())
	assert.True(t, FlexString("   ").Empty())
	assert.False(t, FlexString("x").Empty())
}

func TestExtractedRecordUnmarshalMixedTypes(t *testing.T) {
	raw := `{
		"scammer_name": null,
		"phone_number": 600111222,
		"bank_account": "PL61109010140000071219812874",
		"email": "scam@example.com",
		"confidence": "high"
	}`

	var rec ExtractedRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.True(t, rec.ScammerName.Empty())
	assert.Equal(t, "600111222", rec.PhoneNumber.String())
	assert.Equal(t, "scam@example.com", rec.Email.String())
	assert.Equal(t, "high", rec.Confidence.String())
}
