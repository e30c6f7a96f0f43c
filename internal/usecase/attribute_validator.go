package usecase

import (
	"regexp"
	"strings"

	"github.com/originlens/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonLetterRegex = regexp.MustCompile(`[^A-Z]`)
	nonDigitRegex  = regexp.MustCompile(`[^0-9]`)
)

// hsCodeLength is the canonical Japan Post HS code length.
const hsCodeLength = 10

// validCountryCodes holds the ISO 3166-1 alpha-2 codes the detector is
// allowed to emit. Anything else normalizes to the unknown sentinel.
var validCountryCodes = map[string]bool{
	// Asia
	"JP": true, "CN": true, "KR": true, "VN": true, "TH": true, "TW": true,
	"HK": true, "SG": true, "MY": true, "ID": true, "PH": true, "IN": true,
	"BD": true, "PK": true, "MM": true, "KH": true, "LA": true, "BN": true,
	"MO": true, "MN": true, "NP": true, "LK": true,

	// Americas
	"US": true, "CA": true, "MX": true, "BR": true, "AR": true, "CL": true,
	"CO": true, "PE": true, "VE": true, "EC": true, "BO": true, "PY": true,
	"UY": true, "CR": true, "PA": true, "GT": true, "HN": true, "NI": true,
	"SV": true, "CU": true, "DO": true, "JM": true,

	// Europe
	"GB": true, "DE": true, "FR": true, "IT": true, "ES": true, "NL": true,
	"BE": true, "CH": true, "AT": true, "SE": true, "NO": true, "DK": true,
	"FI": true, "PL": true, "CZ": true, "HU": true, "PT": true, "GR": true,
	"RO": true, "IE": true, "UA": true, "RU": true,

	// Middle East
	"AE": true, "SA": true, "IL": true, "TR": true, "IR": true, "IQ": true,
	"JO": true, "LB": true, "KW": true, "QA": true, "OM": true, "BH": true,
	"YE": true, "SY": true, "PS": true,

	// Africa
	"ZA": true, "EG": true, "NG": true, "KE": true, "GH": true, "TZ": true,
	"UG": true, "ET": true, "MA": true, "DZ": true, "TN": true, "SD": true,
	"AO": true, "MZ": true, "ZW": true, "ZM": true, "MW": true, "BW": true,
	"NA": true,

	// Oceania
	"AU": true, "NZ": true, "FJ": true, "PG": true, "NC": true, "PF": true,
	"WS": true, "TO": true, "VU": true, "SB": true, "GU": true,
}

// NormalizeCountryCode normalizes a raw model-reported country string to a
// valid ISO 3166-1 alpha-2 code or the unknown sentinel. Never fails.
func NormalizeCountryCode(raw string) string {
	if raw == "" {
		return domain.UnknownCountry
	}

	code := strings.ToUpper(strings.TrimSpace(raw))
	code = nonLetterRegex.ReplaceAllString(code, "")

	if code == domain.UnknownCountry {
		return domain.UnknownCountry
	}
	if len(code) != 2 {
		return domain.UnknownCountry
	}
	if !validCountryCodes[code] {
		return domain.UnknownCountry
	}
	return code
}

// ValidateCountries maps each raw code through NormalizeCountryCode, drops
// sentinel results, and deduplicates preserving first-seen order. Returns
// [UnknownCountry] when nothing survives. Idempotent.
func ValidateCountries(raw []string) []string {
	if len(raw) == 0 {
		return []string{domain.UnknownCountry}
	}

	seen := make(map[string]bool, len(raw))
	validated := make([]string, 0, len(raw))
	for _, code := range raw {
		valid := NormalizeCountryCode(code)
		if valid == domain.UnknownCountry || seen[valid] {
			continue
		}
		seen[valid] = true
		validated = append(validated, valid)
	}

	if len(validated) == 0 {
		return []string{domain.UnknownCountry}
	}
	return validated
}

// IsValidCountryCode reports whether a single code normalizes to a real
// country (the sentinel is not one).
func IsValidCountryCode(code string) bool {
	return NormalizeCountryCode(code) != domain.UnknownCountry
}

// NormalizeHSCode strips non-digits and forces the result to exactly hsCodeLength
// digits: long codes are truncated, short ones right-padded with zeros. The
// padding is a lossy heuristic, not a real tariff code; downstream consumers
// must cross-validate against the lookup table. Empty input yields "".
func NormalizeHSCode(raw string) string {
	digits := nonDigitRegex.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}
	if len(digits) >= hsCodeLength {
		return digits[:hsCodeLength]
	}
	return digits + strings.Repeat("0", hsCodeLength-len(digits))
}
