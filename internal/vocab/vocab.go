// Package vocab holds the fixed gazetteers and brand tiers shared by
// extraction, scoring and routing.
package vocab

import "strings"

// Regions is the region gazetteer in match-priority order.
var Regions = []string{
	"Milan", "Rome", "Naples", "Turin", "Palermo", "Genoa", "Bologna",
	"Florence", "Bari", "Catania", "Napoli", "Caserta",
}

// HighRiskRegions raise both risk and fraud scores.
var HighRiskRegions = []string{"Napoli", "Naples", "Caserta"}

// SouthernRegions are routed to the southern regional team.
var SouthernRegions = []string{"Napoli", "Naples", "Caserta"}

// WarrantyTypes is the coverage vocabulary in match-priority order.
var WarrantyTypes = []string{
	"third-party liability",
	"third party liability",
	"comprehensive",
	"collision",
	"fire and theft",
	"personal injury",
}

// Brands is the known vehicle brand vocabulary in match-priority order.
var Brands = []string{
	"BMW", "Mercedes", "Audi", "Volkswagen", "Toyota", "Honda", "Ford",
	"Fiat", "Ferrari", "Lamborghini", "Maserati", "Alfa Romeo", "Porsche",
}

// Models lists known model names per brand, in match-priority order.
var Models = map[string][]string{
	"BMW":         {"1 Series", "3 Series", "5 Series", "7 Series", "X1", "X3", "X5"},
	"Mercedes":    {"A-Class", "C-Class", "E-Class", "S-Class", "GLA", "GLC", "GLE"},
	"Audi":        {"A1", "A3", "A4", "A6", "Q3", "Q5", "Q7"},
	"Volkswagen":  {"Golf", "Polo", "Passat", "Tiguan", "T-Roc"},
	"Toyota":      {"Yaris", "Corolla", "RAV4", "C-HR", "Aygo"},
	"Honda":       {"Civic", "Jazz", "CR-V", "HR-V"},
	"Ford":        {"Fiesta", "Focus", "Puma", "Kuga"},
	"Fiat":        {"Panda", "Punto", "Tipo", "500"},
	"Ferrari":     {"Roma", "Portofino", "SF90", "F8", "488"},
	"Lamborghini": {"Huracan", "Aventador", "Urus"},
	"Maserati":    {"Ghibli", "Levante", "Quattroporte", "Grecale"},
	"Alfa Romeo":  {"Giulia", "Stelvio", "Giulietta", "Tonale"},
	"Porsche":     {"911", "Cayenne", "Macan", "Panamera", "Taycan"},
}

// RiskLuxuryBrands add to the risk score.
var RiskLuxuryBrands = []string{"BMW", "Mercedes", "Audi", "Ferrari", "Lamborghini", "Maserati"}

// VIPBrands imply a VIP customer when the premium is unknown.
var VIPBrands = []string{"Ferrari", "Lamborghini", "Maserati", "Porsche"}

// PremiumBrands imply a Premium customer when the premium is unknown.
var PremiumBrands = []string{"BMW", "Mercedes", "Audi", "Alfa Romeo"}

// ClassifierLuxuryBrands are cited when explaining a high-value prediction.
var ClassifierLuxuryBrands = []string{"BMW", "Mercedes", "Audi", "Porsche"}

// In reports whether v matches any entry of set, ignoring case and
// surrounding whitespace. A nil value is never in a set.
func In(set []string, v *string) bool {
	if v == nil {
		return false
	}
	s := strings.TrimSpace(*v)
	for _, item := range set {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// KnownBrand reports whether v is a brand from the vocabulary.
func KnownBrand(v *string) bool {
	return In(Brands, v)
}
