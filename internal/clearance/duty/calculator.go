// Package duty computes assessed customs duty from cargo declaration data.
// The calculation is deterministic: identical declarations always produce an
// identical assessment, which makes re-computation and caching safe.
package duty

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"portflow/internal/clearance/models"
)

// Rates for one HS chapter, in basis points of the declared value.
type tariffRate struct {
	ImportDutyBps int64
	LevyBps       int64
}

// tariffTable maps two-digit HS chapter prefixes to rates. Chapters not
// listed fall back to defaultRate.
var tariffTable = map[string]tariffRate{
	"02": {ImportDutyBps: 2000, LevyBps: 150}, // meat
	"10": {ImportDutyBps: 500, LevyBps: 150},  // cereals
	"27": {ImportDutyBps: 500, LevyBps: 50},   // mineral fuels
	"30": {ImportDutyBps: 0, LevyBps: 50},     // pharmaceuticals
	"84": {ImportDutyBps: 1000, LevyBps: 150}, // machinery
	"85": {ImportDutyBps: 2000, LevyBps: 150}, // electronics
	"87": {ImportDutyBps: 3500, LevyBps: 150}, // vehicles
}

var defaultRate = tariffRate{ImportDutyBps: 1000, LevyBps: 150}

const (
	vatBps = 750 // 7.5% VAT on declared value

	// Estimation constants for undeclared values, carried over from the
	// legacy assessment: NGN 100 per kilogram, 10% duty on the estimate,
	// and a flat NGN 150,000 when the weight is unknown too.
	estimatedValuePerKGKobo = 100 * 100
	estimatedDutyBps        = 1000
	flatFallbackKobo        = 150_000 * 100
)

// Calculator assesses duty and memoizes results keyed on declaration content
// hash. The zero time source defaults to time.Now.
type Calculator struct {
	now func() time.Time

	mu    sync.Mutex
	cache map[string]models.DutyAssessment
}

type Option func(*Calculator)

// WithClock sets the assessment timestamp source. The timestamp is metadata;
// it does not participate in the content hash.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

func New(opts ...Option) *Calculator {
	c := &Calculator{
		now:   time.Now,
		cache: make(map[string]models.DutyAssessment),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Assess computes the duty owed for a declaration. The breakdown always sums
// to the total amount.
func (c *Calculator) Assess(decl models.CargoDeclaration) models.DutyAssessment {
	hash := ContentHash(decl)

	c.mu.Lock()
	if cached, ok := c.cache[hash]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	assessment := compute(decl)
	assessment.ContentHash = hash
	assessment.AssessedAt = c.now().UTC()

	c.mu.Lock()
	c.cache[hash] = assessment
	c.mu.Unlock()

	return assessment
}

func compute(decl models.CargoDeclaration) models.DutyAssessment {
	if decl.DeclaredValue <= 0 {
		return estimate(decl)
	}

	rate := rateFor(decl.HSCode)
	importDuty := decl.DeclaredValue * rate.ImportDutyBps / 10_000
	vat := decl.DeclaredValue * vatBps / 10_000
	levies := decl.DeclaredValue * rate.LevyBps / 10_000

	return models.DutyAssessment{
		Amount:     importDuty + vat + levies,
		ImportDuty: importDuty,
		VAT:        vat,
		Levies:     levies,
	}
}

func estimate(decl models.CargoDeclaration) models.DutyAssessment {
	if decl.WeightKG <= 0 {
		return models.DutyAssessment{
			Amount:     flatFallbackKobo,
			ImportDuty: flatFallbackKobo,
		}
	}
	estimatedValue := int64(decl.WeightKG * estimatedValuePerKGKobo)
	importDuty := estimatedValue * estimatedDutyBps / 10_000
	return models.DutyAssessment{
		Amount:     importDuty,
		ImportDuty: importDuty,
	}
}

func rateFor(hsCode string) tariffRate {
	if len(hsCode) >= 2 {
		if rate, ok := tariffTable[hsCode[:2]]; ok {
			return rate
		}
	}
	return defaultRate
}

// ContentHash returns the stable digest of a declaration used as the cache
// and replay key.
func ContentHash(decl models.CargoDeclaration) string {
	// Struct field order is fixed, so marshaling is stable for this type.
	raw, _ := json.Marshal(decl)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// FormatNGN renders a kobo amount as a naira string for logs and messages.
func FormatNGN(kobo int64) string {
	naira := kobo / 100
	frac := kobo % 100
	var b strings.Builder
	b.WriteString("₦")
	digits := []byte(nairaDigits(naira))
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(d)
	}
	b.WriteByte('.')
	b.WriteByte(byte('0' + frac/10))
	b.WriteByte(byte('0' + frac%10))
	return b.String()
}

func nairaDigits(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
