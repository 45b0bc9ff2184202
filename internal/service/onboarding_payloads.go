package service

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"vendorhub/internal/model"

	"github.com/shopspring/decimal"
)

// DocumentPayload is a file attached to a step submission; content arrives
// base64-encoded in JSON.
type DocumentPayload struct {
	FileName string `json:"file_name"`
	Content  []byte `json:"content"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type BusinessDetails struct {
	CompanyName        string            `json:"company_name"`
	BusinessType       string            `json:"business_type"`
	TaxID              string            `json:"tax_id"`
	RegistrationNumber string            `json:"registration_number"`
	Website            string            `json:"website,omitempty"`
	Description        string            `json:"description"`
	EstablishedYear    int               `json:"established_year"`
	Employees          int               `json:"employees"`
	Documents          []DocumentPayload `json:"documents,omitempty"`
}

type ContactDetails struct {
	PrimaryContactName    string  `json:"primary_contact_name"`
	PrimaryContactEmail   string  `json:"primary_contact_email"`
	PrimaryContactPhone   string  `json:"primary_contact_phone"`
	SecondaryContactName  string  `json:"secondary_contact_name,omitempty"`
	SecondaryContactEmail string  `json:"secondary_contact_email,omitempty"`
	SecondaryContactPhone string  `json:"secondary_contact_phone,omitempty"`
	Address               Address `json:"address"`
}

type BankingDetails struct {
	BankName      string            `json:"bank_name"`
	AccountNumber string            `json:"account_number"`
	RoutingNumber string            `json:"routing_number"`
	AccountType   string            `json:"account_type"` // checking, savings
	BankAddress   Address           `json:"bank_address"`
	Documents     []DocumentPayload `json:"documents,omitempty"`
}

type InsuranceDetails struct {
	Provider     string          `json:"provider"`
	PolicyNumber string          `json:"policy_number"`
	Coverage     decimal.Decimal `json:"coverage"`
	ExpiryDate   time.Time       `json:"expiry_date"`
}

type ComplianceDetails struct {
	Certifications   []string          `json:"certifications"`
	InsuranceDetails InsuranceDetails  `json:"insurance_details"`
	QualityStandards []string          `json:"quality_standards"`
	Documents        []DocumentPayload `json:"documents,omitempty"`
}

var validBusinessTypes = map[string]bool{
	"corporation":         true,
	"llc":                 true,
	"partnership":         true,
	"sole-proprietorship": true,
	"non-profit":          true,
}

var validAccountTypes = map[string]bool{
	"checking": true,
	"savings":  true,
}

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, fmt.Sprintf(format, args...))
}

func validEmail(addr string) bool {
	_, err := mail.ParseAddress(addr)
	return err == nil
}

func (d *BusinessDetails) validate() error {
	if len(d.CompanyName) < 2 {
		return validationErr("company_name must be at least 2 characters")
	}
	if !validBusinessTypes[d.BusinessType] {
		return validationErr("business_type must be one of: corporation, llc, partnership, sole-proprietorship, non-profit")
	}
	if d.TaxID == "" {
		return validationErr("tax_id is required")
	}
	if d.RegistrationNumber == "" {
		return validationErr("registration_number is required")
	}
	if len(d.Description) < 10 {
		return validationErr("description must be at least 10 characters")
	}
	year := time.Now().Year()
	if d.EstablishedYear < 1800 || d.EstablishedYear > year {
		return validationErr("established_year must be between 1800 and %d", year)
	}
	if d.Employees < 1 {
		return validationErr("employees must be at least 1")
	}
	return nil
}

func (a *Address) validate(requireCountry bool) error {
	if a.Street == "" || a.City == "" || a.State == "" || a.ZipCode == "" {
		return validationErr("address street, city, state and zip_code are required")
	}
	if requireCountry && a.Country == "" {
		return validationErr("address country is required")
	}
	return nil
}

func (d *ContactDetails) validate() error {
	if d.PrimaryContactName == "" {
		return validationErr("primary_contact_name is required")
	}
	if !validEmail(d.PrimaryContactEmail) {
		return validationErr("primary_contact_email is not a valid email address")
	}
	if d.PrimaryContactPhone == "" {
		return validationErr("primary_contact_phone is required")
	}
	if d.SecondaryContactEmail != "" && !validEmail(d.SecondaryContactEmail) {
		return validationErr("secondary_contact_email is not a valid email address")
	}
	return d.Address.validate(true)
}

func (d *BankingDetails) validate() error {
	if d.BankName == "" {
		return validationErr("bank_name is required")
	}
	if d.AccountNumber == "" {
		return validationErr("account_number is required")
	}
	if d.RoutingNumber == "" {
		return validationErr("routing_number is required")
	}
	if !validAccountTypes[d.AccountType] {
		return validationErr("account_type must be checking or savings")
	}
	return d.BankAddress.validate(false)
}

func (d *ComplianceDetails) validate() error {
	if d.InsuranceDetails.Provider == "" {
		return validationErr("insurance_details.provider is required")
	}
	if d.InsuranceDetails.PolicyNumber == "" {
		return validationErr("insurance_details.policy_number is required")
	}
	if !d.InsuranceDetails.Coverage.IsPositive() {
		return validationErr("insurance_details.coverage must be a positive amount")
	}
	if d.InsuranceDetails.ExpiryDate.IsZero() {
		return validationErr("insurance_details.expiry_date is required")
	}
	return nil
}

// parseStepPayload decodes and validates the payload for a step kind, returning
// the sanitized JSON to persist on the vendor (documents stripped) plus the
// attached documents.
func parseStepPayload(kind string, raw json.RawMessage) ([]byte, []DocumentPayload, error) {
	strict := func(v interface{}) error {
		if err := json.Unmarshal(raw, v); err != nil {
			return validationErr("malformed %s payload: %v", kind, err)
		}
		return nil
	}

	switch kind {
	case model.StepBusiness:
		var d BusinessDetails
		if err := strict(&d); err != nil {
			return nil, nil, err
		}
		if err := d.validate(); err != nil {
			return nil, nil, err
		}
		docs := d.Documents
		d.Documents = nil
		stored, err := json.Marshal(d)
		return stored, docs, err
	case model.StepContact:
		var d ContactDetails
		if err := strict(&d); err != nil {
			return nil, nil, err
		}
		if err := d.validate(); err != nil {
			return nil, nil, err
		}
		stored, err := json.Marshal(d)
		return stored, nil, err
	case model.StepBanking:
		var d BankingDetails
		if err := strict(&d); err != nil {
			return nil, nil, err
		}
		if err := d.validate(); err != nil {
			return nil, nil, err
		}
		docs := d.Documents
		d.Documents = nil
		stored, err := json.Marshal(d)
		return stored, docs, err
	case model.StepCompliance:
		var d ComplianceDetails
		if err := strict(&d); err != nil {
			return nil, nil, err
		}
		if err := d.validate(); err != nil {
			return nil, nil, err
		}
		docs := d.Documents
		d.Documents = nil
		stored, err := json.Marshal(d)
		return stored, docs, err
	default:
		return nil, nil, validationErr("unknown step kind %q", kind)
	}
}
