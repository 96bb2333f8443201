package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/claim-router/internal/vocab"
)

// Label classifies a recognized entity span.
type Label string

const (
	LabelAge      Label = "AGE"
	LabelLocation Label = "LOCATION"
	LabelMoney    Label = "MONEY"
)

// Entity is one labeled span of the input text. Value carries the parsed
// number for AGE and MONEY spans; Text carries the canonical name for
// LOCATION spans.
type Entity struct {
	Label Label   `json:"label"`
	Text  string  `json:"text"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Value float64 `json:"value,omitempty"`
}

// EntityRecognizer finds labeled spans in free text. Implementations must
// be deterministic and safe for concurrent use.
type EntityRecognizer interface {
	Recognize(text string) []Entity
}

// extraPlaces extends the region gazetteer for the recognizer only.
var extraPlaces = []string{
	"Venice", "Verona", "Padua", "Trieste", "Parma", "Modena", "Pisa",
	"Salerno", "Messina", "Cagliari", "Bergamo", "Brescia",
}

var (
	agePhraseRe = regexp.MustCompile(`(?i)\baged?\s*:?\s*(\d{1,3})\b`)
	moneyRe     = regexp.MustCompile(
		`(?i)(?:€|\$|\beur(?:os?)?\b)\s*` + numberPattern + `(?:\s*(thousand|k)\b)?` +
			`|` + numberPattern + `\s*(?:(thousand|k)\b|€|euros?\b|eur\b)`,
	)
)

// LexiconRecognizer is a rule-based EntityRecognizer built from the region
// gazetteer plus a small list of additional Italian places.
type LexiconRecognizer struct {
	places []wordPattern
}

// NewLexiconRecognizer creates a LexiconRecognizer. Additional place names
// are appended after the built-in ones.
func NewLexiconRecognizer(places ...string) *LexiconRecognizer {
	all := make([]string, 0, len(vocab.Regions)+len(extraPlaces)+len(places))
	all = append(all, vocab.Regions...)
	all = append(all, extraPlaces...)
	all = append(all, places...)
	return &LexiconRecognizer{places: compileWords(all)}
}

// Recognize returns every AGE, LOCATION and MONEY span, ordered by start
// offset and then label.
func (r *LexiconRecognizer) Recognize(text string) []Entity {
	var out []Entity

	for _, re := range []*regexp.Regexp{agePhraseRe, ageRe} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if re == agePhraseRe && vehicleAgeContext(text, m[0]) {
				continue
			}
			v, ok := parseAmount(text[m[2]:m[3]], "")
			if !ok {
				continue
			}
			out = append(out, Entity{Label: LabelAge, Text: text[m[0]:m[1]], Start: m[0], End: m[1], Value: v})
		}
	}

	for _, p := range r.places {
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			out = append(out, Entity{Label: LabelLocation, Text: p.canonical, Start: m[0], End: m[1]})
		}
	}

	for _, m := range moneyRe.FindAllStringSubmatchIndex(text, -1) {
		num, qualifier := group(text, m, 1), group(text, m, 2)
		if num == "" {
			num, qualifier = group(text, m, 3), group(text, m, 4)
		}
		v, ok := parseAmount(num, qualifier)
		if !ok {
			continue
		}
		out = append(out, Entity{Label: LabelMoney, Text: text[m[0]:m[1]], Start: m[0], End: m[1], Value: v})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// vehicleAgeRe matches text ending in a vehicle noun, as in "vehicle age 3".
var vehicleAgeRe = regexp.MustCompile(`(?i)\b(?:vehicle|car|auto|truck|van|motorbike)(?:'s)?\s*$`)

func vehicleAgeContext(text string, start int) bool {
	from := start - 16
	if from < 0 {
		from = 0
	}
	return vehicleAgeRe.MatchString(text[from:start])
}

func group(text string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}

// premiumWindow is how far back from a MONEY span the recognizer looks for
// the word "premium" within the same sentence.
const premiumWindow = 40

// entityIndex groups recognizer output by the field it can fill. Ages
// stated as "NN years old" are kept apart from "age NN" phrases and win
// over them.
type entityIndex struct {
	ages      []Entity
	agePhrase []Entity
	locations []Entity
	amounts   []Entity
	premiums  []Entity
}

func indexEntities(text string, ents []Entity) entityIndex {
	var ix entityIndex
	for _, e := range ents {
		switch e.Label {
		case LabelAge:
			if ageRe.MatchString(e.Text) {
				ix.ages = append(ix.ages, e)
			} else {
				ix.agePhrase = append(ix.agePhrase, e)
			}
		case LabelLocation:
			ix.locations = append(ix.locations, e)
		case LabelMoney:
			if premiumContext(text, e.Start) {
				ix.premiums = append(ix.premiums, e)
			} else {
				ix.amounts = append(ix.amounts, e)
			}
		}
	}
	return ix
}

func premiumContext(text string, start int) bool {
	if start > len(text) {
		return false
	}
	from := start - premiumWindow
	if from < 0 {
		from = 0
	}
	window := text[from:start]
	if i := strings.LastIndexAny(window, ".!?\n"); i >= 0 {
		window = window[i+1:]
	}
	return strings.Contains(strings.ToLower(window), "premium")
}

func (ix entityIndex) age() func(string) (int, bool) {
	if len(ix.ages) == 0 && len(ix.agePhrase) == 0 {
		return nil
	}
	return func(string) (int, bool) {
		for _, set := range [][]Entity{ix.ages, ix.agePhrase} {
			for _, e := range set {
				if e.Value >= 0 && e.Value == math.Trunc(e.Value) {
					return int(e.Value), true
				}
			}
		}
		return 0, false
	}
}

func (ix entityIndex) location() func(string) (string, bool) {
	if len(ix.locations) == 0 {
		return nil
	}
	return func(string) (string, bool) {
		return ix.locations[0].Text, true
	}
}

func (ix entityIndex) claimAmount() func(string) (float64, bool) {
	return firstValue(ix.amounts)
}

func (ix entityIndex) premium() func(string) (float64, bool) {
	return firstValue(ix.premiums)
}

func firstValue(ents []Entity) func(string) (float64, bool) {
	if len(ents) == 0 {
		return nil
	}
	return func(string) (float64, bool) {
		return ents[0].Value, true
	}
}
