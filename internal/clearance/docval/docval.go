// Package docval extracts and validates Bill of Lading data. The upstream
// document pipeline delivers extracted text; scoring whether a document is
// authentic is an external capability and stays behind the gateway.
package docval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	containerIDPattern = regexp.MustCompile(`\b[A-Z]{4}\d{7}\b`)
	tinPattern         = regexp.MustCompile(`\b\d{10,12}\b`)
	weightPattern      = regexp.MustCompile(`(\d+(?:,\d+)?(?:\.\d+)?)\s*(?:KG|kg|Kg|MT|mt|Mt)`)
)

// Document is the structured data extracted from a Bill of Lading.
type Document struct {
	ContainerID      string
	BillOfLadingRef  string
	VesselName       string
	ImporterName     string
	ImporterTIN      string
	PortOfLoading    string
	PortOfDischarge  string
	CargoDescription string
	CargoWeightKG    float64
	HSCode           string
	DeclaredValueNGN int64
	Origin           string
}

// Parse extracts structured fields from Bill of Lading text.
func Parse(text string) Document {
	doc := Document{
		ContainerID:     containerIDPattern.FindString(text),
		ImporterTIN:     tinPattern.FindString(text),
		BillOfLadingRef: extractField(text, "B/L Number", "Bill of Lading", "BL Ref"),
		VesselName:      extractField(text, "Vessel Name", "Vessel", "Ship Name"),
		ImporterName:    extractField(text, "Consignee", "Importer", "Notify Party"),
		PortOfLoading:   extractField(text, "Port of Loading", "POL", "Loading Port"),
		PortOfDischarge: extractField(text, "Port of Discharge", "POD", "Discharge Port"),
		CargoDescription: extractField(text,
			"Description of Goods", "Cargo Description", "Goods Description"),
		HSCode: extractField(text, "HS Code", "Tariff Code"),
		Origin: extractField(text, "Country of Origin", "Origin"),
	}
	if doc.PortOfDischarge == "" {
		doc.PortOfDischarge = "Lagos, Nigeria"
	}
	if m := weightPattern.FindStringSubmatch(text); m != nil {
		if w, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			doc.CargoWeightKG = w
		}
	}
	if v := extractField(text, "Declared Value", "Cargo Value"); v != "" {
		doc.DeclaredValueNGN = parseNaira(v)
	}
	return doc
}

// Validate returns the issues found in a parsed document. A missing
// container ID leaves nothing to anchor a case on and blocks creation
// upstream; the remaining issues are advisory.
func Validate(doc Document) []string {
	var issues []string

	if doc.ContainerID == "" {
		issues = append(issues, "container ID not found in document")
	}

	if doc.ImporterTIN != "" && !regexp.MustCompile(`^\d{10,12}$`).MatchString(doc.ImporterTIN) {
		issues = append(issues, "TIN format is invalid (expected 10-12 digits)")
	}

	if doc.VesselName == "" {
		issues = append(issues, "vessel name is missing")
	}
	if doc.ImporterName == "" {
		issues = append(issues, "importer name is missing")
	}

	return issues
}

func extractField(text string, labels ...string) string {
	for _, label := range labels {
		pattern := fmt.Sprintf(`(?i)%s\s*[:：]\s*(.+?)(?:\n|$)`, regexp.QuoteMeta(label))
		if m := regexp.MustCompile(pattern).FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func parseNaira(s string) int64 {
	s = strings.TrimSpace(strings.TrimPrefix(s, "₦"))
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
		return int64(v * 100)
	}
	return 0
}
