package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/vocab"
)

// firstOf runs detectors in order and returns the first hit. A detector
// inspects text and reports false when nothing was found; nil detectors are
// skipped.
func firstOf[T any](text string, detectors ...func(string) (T, bool)) (T, bool) {
	for _, d := range detectors {
		if d == nil {
			continue
		}
		if v, ok := d(text); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FromText applies the ordered detector battery to free text. When a
// recognizer is configured its entities are tried first for each field.
func (e *Extractor) FromText(text string) model.ClaimRecord {
	rec := model.ClaimRecord{RawText: model.Ptr(text)}

	var ents entityIndex
	if e.recognizer != nil {
		ents = indexEntities(text, e.recognizer.Recognize(text))
	}

	if age, ok := firstOf(text, ents.age(), detectAge); ok {
		rec.PolicyholderAge = &age
	}
	if region, ok := firstOf(text, ents.location(), detectRegion); ok {
		rec.ClaimRegion = &region
	}
	if warranty, ok := firstOf(text, detectWarranty); ok {
		rec.Warranty = &warranty
	}
	if brand, ok := firstOf(text, detectBrand); ok {
		rec.VehicleBrand = &brand
		if m, ok := detectModel(brand, text); ok {
			rec.VehicleModel = &m
		}
	}
	if amount, ok := firstOf(text, ents.claimAmount(), detectClaimAmount); ok {
		rec.ClaimAmountPaid = &amount
	}
	if premium, ok := firstOf(text, ents.premium(), detectPremium); ok {
		rec.PremiumAmountPaid = &premium
	}

	return rec
}

var ageRe = regexp.MustCompile(`(?i)(\d+)[\s-]*years?[\s-]*old`)

func detectAge(text string) (int, bool) {
	m := ageRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return age, true
}

type wordPattern struct {
	canonical string
	re        *regexp.Regexp
}

func compileWords(words []string) []wordPattern {
	out := make([]wordPattern, 0, len(words))
	for _, w := range words {
		out = append(out, wordPattern{
			canonical: w,
			re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`),
		})
	}
	return out
}

func firstWord(patterns []wordPattern, text string) (string, bool) {
	for _, p := range patterns {
		if p.re.MatchString(text) {
			return p.canonical, true
		}
	}
	return "", false
}

var (
	regionPatterns = compileWords(vocab.Regions)
	brandPatterns  = compileWords(vocab.Brands)
	modelPatterns  = func() map[string][]wordPattern {
		m := make(map[string][]wordPattern, len(vocab.Models))
		for brand, models := range vocab.Models {
			m[brand] = compileWords(models)
		}
		return m
	}()
)

func detectRegion(text string) (string, bool) {
	return firstWord(regionPatterns, text)
}

func detectBrand(text string) (string, bool) {
	return firstWord(brandPatterns, text)
}

func detectModel(brand, text string) (string, bool) {
	return firstWord(modelPatterns[brand], text)
}

func detectWarranty(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range vocab.WarrantyTypes {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}

// numberPattern matches "18,000", "18,000.50", "18000", "18000.5" and the
// Italian grouping "18.000" / "18.000,50".
const numberPattern = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?\b|\d+(?:\.\d+)?)`

var dotGroupedRe = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?$`)

const currencyPattern = `(?:€|\$|euros?\b|eur\b)`

// amountRe has two alternatives: a currency-marked number somewhere after
// an amount keyword, or a number followed by a magnitude/currency suffix.
var amountRe = regexp.MustCompile(
	`(?i)(?:claim|amount|cost|worth|around|approximately).*?` + currencyPattern + `\s*` + numberPattern + `(?:\s*(thousand|k)\b)?` +
		`|` + numberPattern + `\s*(thousand|k\b|€|euros?\b|eur\b)`,
)

func detectClaimAmount(text string) (float64, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	num, qualifier := m[1], m[2]
	if num == "" {
		num, qualifier = m[3], m[4]
	}
	return parseAmount(num, qualifier)
}

var premiumRe = regexp.MustCompile(
	`(?i)\bpremium\b[^.\d€$]{0,30}` + currencyPattern + `?\s*` + numberPattern + `(?:\s*(thousand|k)\b)?`,
)

func detectPremium(text string) (float64, bool) {
	m := premiumRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return parseAmount(m[1], m[2])
}

// parseAmount strips thousands separators and expands a "thousand"/"k"
// qualifier when the magnitude is small enough to be in thousands.
func parseAmount(num, qualifier string) (float64, bool) {
	if dotGroupedRe.MatchString(num) {
		num = strings.Replace(strings.ReplaceAll(num, ".", ""), ",", ".", 1)
	} else {
		num = strings.ReplaceAll(num, ",", "")
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(qualifier) {
	case "thousand", "k":
		if v < 100 {
			v *= 1000
		}
	}
	return v, true
}
