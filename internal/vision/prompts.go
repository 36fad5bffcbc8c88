package vision

// screenshotPrompt asks the vision model for a strict JSON object describing
// the scammer identity visible in a conversation screenshot.
const screenshotPrompt = `Przeanalizuj ten screenshot rozmowy i wyodrębnij informacje o oszuście.
Zwróć TYLKO JSON o polach:
{
  "scammer_name": "string lub null",
  "phone_number": "string lub null",
  "bank_account": "string lub null",
  "email": "string lub null",
  "facebook_link": "string lub null",
  "scam_description": "string",
  "confidence": "high/medium/low",
  "screenshot_type": "messenger/whatsapp/olx/sms/other"
}
Zasady:
- Jeśli dane niewidoczne -> null.
- Telefon normalizuj do +48XXXXXXXXX jeśli to możliwe.
- IBAN Polski: PL + 26 cyfr (bez spacji).
`

// prefilterPrompt is the cheap text-only triage before any image is sent to
// the vision model.
const prefilterPrompt = `Oceń czy ten post z grupy o oszustwach wygląda jak zgłoszenie oszustwa.
Zwróć JSON:
{ "is_scam_report": true/false, "has_contact_info": true/false, "priority": "high/medium/low" }

POST:
%s`
