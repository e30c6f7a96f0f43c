package hscode

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/originlens/backend/internal/domain"
)

//go:embed data/japan_post_hscode.json
var rawDataset []byte

// headingLength is the HS tariff-heading granularity: a 6-digit prefix match
// against any table entry counts as valid even if the full 10-digit code
// is not listed.
const headingLength = 6

// similarPrefixLength is used when collecting nearby suggestions.
const similarPrefixLength = 4

var nonDigitRegex = regexp.MustCompile(`[^0-9]`)

// dataset mirrors the reference file layout.
type dataset struct {
	Items []domain.HSCodeItem `json:"items"`
}

// Lookup is a read-only index over the Japan Post HS code reference table.
// Built once at startup and shared by reference; safe for concurrent reads.
type Lookup struct {
	items  []domain.HSCodeItem
	byCode map[string]*domain.HSCodeItem
}

// NewLookup builds the index from the embedded reference dataset.
func NewLookup() (*Lookup, error) {
	return NewLookupFromJSON(rawDataset)
}

// NewLookupFromJSON builds the index from raw dataset bytes.
func NewLookupFromJSON(data []byte) (*Lookup, error) {
	var ds dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode HS code dataset: %w", err)
	}

	l := &Lookup{
		items:  ds.Items,
		byCode: make(map[string]*domain.HSCodeItem, len(ds.Items)),
	}
	for i := range l.items {
		l.byCode[l.items[i].Code] = &l.items[i]
	}
	return l, nil
}

// TotalItems returns the number of reference rows loaded.
func (l *Lookup) TotalItems() int {
	return len(l.items)
}

// Search returns up to limit rows whose labels or code contain keyword,
// case-insensitive, in table order. First match wins, not ranked.
func (l *Lookup) Search(keyword string, limit int) []domain.HSCodeItem {
	if keyword == "" || limit <= 0 {
		return nil
	}

	lower := strings.ToLower(keyword)
	var results []domain.HSCodeItem
	for _, item := range l.items {
		if strings.Contains(strings.ToLower(item.Japanese), lower) ||
			strings.Contains(strings.ToLower(item.English), lower) ||
			strings.Contains(strings.ToLower(item.Chinese), lower) ||
			strings.Contains(item.Code, keyword) {
			results = append(results, item)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}

// Validate reports whether a code exists in the table, either as an exact
// 10-digit match or sharing a 6-digit tariff heading with any entry.
func (l *Lookup) Validate(code string) bool {
	clean := nonDigitRegex.ReplaceAllString(code, "")
	if len(clean) < headingLength {
		return false
	}

	if _, ok := l.byCode[clean]; ok {
		return true
	}

	prefix := clean[:headingLength]
	for registered := range l.byCode {
		if strings.HasPrefix(registered, prefix) {
			return true
		}
	}
	return false
}

// GetByCode returns the table row for an exact code, or nil.
func (l *Lookup) GetByCode(code string) *domain.HSCodeItem {
	clean := nonDigitRegex.ReplaceAllString(code, "")
	return l.byCode[clean]
}

// FindSimilar returns up to limit rows sharing the first 4 digits with code.
func (l *Lookup) FindSimilar(code string, limit int) []domain.HSCodeItem {
	clean := nonDigitRegex.ReplaceAllString(code, "")
	if len(clean) < similarPrefixLength || limit <= 0 {
		return nil
	}

	prefix := clean[:similarPrefixLength]
	var results []domain.HSCodeItem
	for _, item := range l.items {
		if strings.HasPrefix(item.Code, prefix) {
			results = append(results, item)
			if len(results) >= limit {
				break
			}
		}
	}
	return results
}

// GetValidated cross-references a model-suggested code: exact match first,
// then 6-digit heading match with nearby suggestions, then keyword search as
// a last resort. Never fails; suggestions may be empty.
func (l *Lookup) GetValidated(code, keywords string) *domain.HSValidation {
	result := &domain.HSValidation{
		Original:    code,
		Validated:   code,
		Suggestions: []domain.HSCodeItem{},
	}

	if code == "" {
		return result
	}

	if item := l.GetByCode(code); item != nil {
		result.IsValid = true
		result.MatchedItem = item
		return result
	}

	if l.Validate(code) {
		result.IsValid = true
		if similar := l.FindSimilar(code, 3); len(similar) > 0 {
			result.Suggestions = similar
		}
		return result
	}

	if keywords != "" {
		if found := l.Search(keywords, 3); len(found) > 0 {
			result.Suggestions = found
		}
	}
	return result
}
