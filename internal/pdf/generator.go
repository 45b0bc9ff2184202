package pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"vendorhub/internal/model"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// RenderVendorRecord renders a vendor, its submitted detail blocks, and its
// activity timeline into a portable PDF document. A QR code linking back to
// the vendor detail page is embedded in the header.
func RenderVendorRecord(vendor *model.Vendor, timeline []model.TimelineEntry, detailURL string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(140, 10, "Vendor Record", "", 0, "L", false, 0, "")

	if detailURL != "" {
		qrPng, err := qrcode.Encode(detailURL, qrcode.Low, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode QR code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("vendor_qr", opts, bytes.NewReader(qrPng))
		pdf.ImageOptions("vendor_qr", 170, 12, 25, 25, false, opts, 0, "")
	}
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	writeField(pdf, "Name", vendor.Name)
	writeField(pdf, "Email", vendor.Email)
	writeField(pdf, "Category", vendor.Category)
	writeField(pdf, "Status", vendor.Status)
	writeField(pdf, "Priority", vendor.Priority)
	writeField(pdf, "Created", vendor.CreatedAt.Format("2006-01-02 15:04"))
	if vendor.Description != "" {
		writeField(pdf, "Description", vendor.Description)
	}

	writeDetailBlock(pdf, "Business Details", vendor.BusinessDetails)
	writeDetailBlock(pdf, "Contact Details", vendor.ContactDetails)
	writeDetailBlock(pdf, "Banking Details", vendor.BankingDetails)
	writeComplianceBlock(pdf, vendor.ComplianceDetails)

	if len(timeline) > 0 {
		writeSectionTitle(pdf, "Activity Timeline")
		pdf.SetFont("Arial", "", 10)
		for _, entry := range timeline {
			line := fmt.Sprintf("%s  [%s]  %s — %s",
				entry.CreatedAt.Format("2006-01-02 15:04"), entry.Type, entry.Title, entry.Description)
			pdf.MultiCell(0, 5.5, line, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func writeField(pdf *gofpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, value, "", "L", false)
}

// writeDetailBlock flattens a stored JSONB block into label/value rows.
func writeDetailBlock(pdf *gofpdf.Fpdf, title string, raw []byte) {
	if len(raw) == 0 {
		return
	}
	var block map[string]interface{}
	if err := json.Unmarshal(raw, &block); err != nil {
		return
	}
	writeSectionTitle(pdf, title)
	for _, key := range sortedKeys(block) {
		writeField(pdf, humanize(key), flatten(block[key]))
	}
}

// writeComplianceBlock renders the compliance details with the coverage amount
// formatted as money.
func writeComplianceBlock(pdf *gofpdf.Fpdf, raw []byte) {
	if len(raw) == 0 {
		return
	}
	var block struct {
		Certifications   []string `json:"certifications"`
		QualityStandards []string `json:"quality_standards"`
		Insurance        struct {
			Provider     string          `json:"provider"`
			PolicyNumber string          `json:"policy_number"`
			Coverage     decimal.Decimal `json:"coverage"`
			ExpiryDate   string          `json:"expiry_date"`
		} `json:"insurance_details"`
	}
	if err := json.Unmarshal(raw, &block); err != nil {
		return
	}
	writeSectionTitle(pdf, "Compliance Details")
	writeField(pdf, "Certifications", strings.Join(block.Certifications, ", "))
	writeField(pdf, "Quality Standards", strings.Join(block.QualityStandards, ", "))
	writeField(pdf, "Insurance Provider", block.Insurance.Provider)
	writeField(pdf, "Policy Number", block.Insurance.PolicyNumber)
	writeField(pdf, "Coverage", "$"+block.Insurance.Coverage.StringFixed(2))
	writeField(pdf, "Policy Expiry", block.Insurance.ExpiryDate)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func humanize(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func flatten(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	case []interface{}:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, flatten(item))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		parts := make([]string, 0, len(value))
		for _, key := range sortedKeys(value) {
			parts = append(parts, humanize(key)+": "+flatten(value[key]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", value)
	}
}
