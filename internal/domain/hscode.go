package domain

// HSCodeItem is one row of the Japan Post tariff reference table.
type HSCodeItem struct {
	Japanese string `json:"ja"`
	Chinese  string `json:"cn"`
	English  string `json:"en"`
	Code     string `json:"hscode"`
}

// HSValidation is the result of cross-referencing a model-suggested HS code
// against the reference table. Validation is permissive at the 6-digit
// tariff-heading granularity.
type HSValidation struct {
	Original    string       `json:"original"`
	Validated   string       `json:"validated"`
	IsValid     bool         `json:"is_valid"`
	MatchedItem *HSCodeItem  `json:"matched_item,omitempty"`
	Suggestions []HSCodeItem `json:"suggestions"`
}
