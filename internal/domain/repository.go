package domain

import "context"

// Detector defines the interface for the LLM extraction backend.
// Implementations must be safe for concurrent calls on distinct inputs.
type Detector interface {
	Detect(ctx context.Context, text, model string) (*Attributes, error)
	DetectProduct(ctx context.Context, title, description, model string) (*Attributes, error)
}

// ResultCache defines the bounded LRU map from a request fingerprint to a
// previously validated attribute set. The detection service is its sole
// mutator.
type ResultCache interface {
	Get(key string) (*Attributes, bool)
	Add(key string, attrs *Attributes)
	Len() int
	Clear() int
}

// HSCodeIndex defines the read-only tariff table, safe for concurrent reads.
type HSCodeIndex interface {
	Search(keyword string, limit int) []HSCodeItem
	Validate(code string) bool
	GetValidated(code, keywords string) *HSValidation
}
