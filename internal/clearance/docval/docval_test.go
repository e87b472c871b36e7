package docval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const billOfLading = `BILL OF LADING
B/L Number: BOL-2026-0042
Vessel Name: MV Apapa Trader
Consignee: Lagos Trading Co Ltd
Container No: MSKU1234567
TIN: 01234567891
Port of Loading: Shanghai, China
Port of Discharge: Apapa, Lagos
Description of Goods: Computer equipment
Gross Weight: 1,200 KG
HS Code: 8471
Declared Value: ₦400,000
Country of Origin: CN
`

func TestParse_ExtractsAllFields(t *testing.T) {
	doc := Parse(billOfLading)

	assert.Equal(t, "MSKU1234567", doc.ContainerID)
	assert.Equal(t, "BOL-2026-0042", doc.BillOfLadingRef)
	assert.Equal(t, "MV Apapa Trader", doc.VesselName)
	assert.Equal(t, "Lagos Trading Co Ltd", doc.ImporterName)
	assert.Equal(t, "01234567891", doc.ImporterTIN)
	assert.Equal(t, "Shanghai, China", doc.PortOfLoading)
	assert.Equal(t, "Apapa, Lagos", doc.PortOfDischarge)
	assert.Equal(t, "Computer equipment", doc.CargoDescription)
	assert.Equal(t, "8471", doc.HSCode)
	assert.Equal(t, float64(1200), doc.CargoWeightKG)
	assert.Equal(t, int64(40_000_000), doc.DeclaredValueNGN)
	assert.Equal(t, "CN", doc.Origin)
}

func TestParse_AcceptsAlternateLabels(t *testing.T) {
	doc := Parse("BL Ref: X-1\nShip Name: MV Test\nImporter: Acme\nTariff Code: 8703\nTGHU7654321")

	assert.Equal(t, "X-1", doc.BillOfLadingRef)
	assert.Equal(t, "MV Test", doc.VesselName)
	assert.Equal(t, "Acme", doc.ImporterName)
	assert.Equal(t, "8703", doc.HSCode)
	assert.Equal(t, "TGHU7654321", doc.ContainerID)
}

func TestParse_DischargePortDefaultsToLagos(t *testing.T) {
	doc := Parse("Vessel: MV Test")
	assert.Equal(t, "Lagos, Nigeria", doc.PortOfDischarge)
}

func TestValidate_CleanDocumentHasNoIssues(t *testing.T) {
	assert.Empty(t, Validate(Parse(billOfLading)))
}

func TestValidate_MissingFieldsAreAdvisory(t *testing.T) {
	issues := Validate(Document{ContainerID: "MSKU1234567"})

	assert.Contains(t, issues, "vessel name is missing")
	assert.Contains(t, issues, "importer name is missing")
}

func TestValidate_FlagsMissingContainerID(t *testing.T) {
	issues := Validate(Document{VesselName: "MV Test", ImporterName: "Acme"})

	assert.Contains(t, issues, "container ID not found in document")
}

func TestParse_IgnoresMalformedContainerIDs(t *testing.T) {
	// Too few letters, too few digits, lowercase: none qualify as an ID.
	doc := Parse("Container: MSK1234567\nAlt: TGHU765432\nOther: msku1234567")

	assert.Empty(t, doc.ContainerID)
}

func TestValidate_BadTINIsAdvisory(t *testing.T) {
	issues := Validate(Document{
		ContainerID:  "MSKU1234567",
		ImporterTIN:  "123",
		VesselName:   "MV Test",
		ImporterName: "Acme",
	})

	assert.Equal(t, []string{"TIN format is invalid (expected 10-12 digits)"}, issues)
}
