package service

import (
	"encoding/json"
	"testing"

	"vendorhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStepPayloadBusinessValidation(t *testing.T) {
	cases := map[string]string{
		"short company name": `{"company_name": "X", "business_type": "llc", "tax_id": "1", "registration_number": "1", "description": "long enough text", "established_year": 2000, "employees": 5}`,
		"bad business type":  `{"company_name": "Acme", "business_type": "cooperative", "tax_id": "1", "registration_number": "1", "description": "long enough text", "established_year": 2000, "employees": 5}`,
		"missing tax id":     `{"company_name": "Acme", "business_type": "llc", "registration_number": "1", "description": "long enough text", "established_year": 2000, "employees": 5}`,
		"year before 1800":   `{"company_name": "Acme", "business_type": "llc", "tax_id": "1", "registration_number": "1", "description": "long enough text", "established_year": 1750, "employees": 5}`,
		"zero employees":     `{"company_name": "Acme", "business_type": "llc", "tax_id": "1", "registration_number": "1", "description": "long enough text", "established_year": 2000, "employees": 0}`,
		"not json":           `{"company_name": `,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseStepPayload(model.StepBusiness, json.RawMessage(raw))
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestParseStepPayloadContactValidation(t *testing.T) {
	cases := map[string]string{
		"bad primary email":   `{"primary_contact_name": "Dana", "primary_contact_email": "nope", "primary_contact_phone": "555", "address": {"street": "1 Main", "city": "Austin", "state": "TX", "zip_code": "73301", "country": "US"}}`,
		"bad secondary email": `{"primary_contact_name": "Dana", "primary_contact_email": "dana@x.com", "primary_contact_phone": "555", "secondary_contact_email": "nope", "address": {"street": "1 Main", "city": "Austin", "state": "TX", "zip_code": "73301", "country": "US"}}`,
		"missing country":     `{"primary_contact_name": "Dana", "primary_contact_email": "dana@x.com", "primary_contact_phone": "555", "address": {"street": "1 Main", "city": "Austin", "state": "TX", "zip_code": "73301"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseStepPayload(model.StepContact, json.RawMessage(raw))
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestParseStepPayloadBankingValidation(t *testing.T) {
	// Bank address country is optional, unlike the contact address.
	valid := `{"bank_name": "First National", "account_number": "1", "routing_number": "1", "account_type": "savings", "bank_address": {"street": "2 Bank Ave", "city": "Austin", "state": "TX", "zip_code": "73301"}}`
	_, _, err := parseStepPayload(model.StepBanking, json.RawMessage(valid))
	require.NoError(t, err)

	badType := `{"bank_name": "First National", "account_number": "1", "routing_number": "1", "account_type": "crypto", "bank_address": {"street": "2 Bank Ave", "city": "Austin", "state": "TX", "zip_code": "73301"}}`
	_, _, err = parseStepPayload(model.StepBanking, json.RawMessage(badType))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestParseStepPayloadComplianceValidation(t *testing.T) {
	cases := map[string]string{
		"zero coverage":    `{"insurance_details": {"provider": "Acme", "policy_number": "P1", "coverage": "0", "expiry_date": "2027-01-01T00:00:00Z"}}`,
		"missing provider": `{"insurance_details": {"policy_number": "P1", "coverage": "1000", "expiry_date": "2027-01-01T00:00:00Z"}}`,
		"no expiry":        `{"insurance_details": {"provider": "Acme", "policy_number": "P1", "coverage": "1000"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := parseStepPayload(model.StepCompliance, json.RawMessage(raw))
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestParseStepPayloadStripsDocuments(t *testing.T) {
	raw := `{
		"company_name": "Acme Corp",
		"business_type": "llc",
		"tax_id": "12-345",
		"registration_number": "REG-1",
		"description": "long enough description",
		"established_year": 2001,
		"employees": 10,
		"documents": [{"file_name": "cert.pdf", "content": "aGVsbG8="}]
	}`

	stored, docs, err := parseStepPayload(model.StepBusiness, json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "cert.pdf", docs[0].FileName)
	assert.Equal(t, []byte("hello"), docs[0].Content)
	assert.NotContains(t, string(stored), "documents")
	assert.Contains(t, string(stored), "Acme Corp")
}

func TestParseStepPayloadUnknownKind(t *testing.T) {
	_, _, err := parseStepPayload("shipping", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, model.ErrValidation)
}
