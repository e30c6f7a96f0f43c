package domain

import "encoding/json"

const (
	// UnknownCountry is the sentinel country code meaning "no valid country detected".
	UnknownCountry = "ZZ"

	// NoneValue marks absent scalar attributes in model output.
	NoneValue = "none"
)

// StringList is a list-valued attribute payload. Models occasionally return a
// bare string where a list is expected; UnmarshalJSON wraps it into a
// single-element list.
type StringList []string

// UnmarshalJSON accepts either a JSON array of strings or a single string.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = []string{single}
	return nil
}

// ListAttribute is a multi-valued extracted field (country, target_user).
type ListAttribute struct {
	Value      StringList `json:"value"`
	Evidence   string     `json:"evidence"`
	Confidence float64    `json:"confidence"`
}

// ScalarAttribute is a single-valued extracted field (size, material, hscode).
type ScalarAttribute struct {
	Value      string  `json:"value"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

// Attributes is the fixed set of product attributes extracted from a
// description. All five fields are always present after pipeline processing;
// fields the model omits are filled from the default template.
type Attributes struct {
	Country    ListAttribute   `json:"country"`
	Size       ScalarAttribute `json:"size"`
	Material   ScalarAttribute `json:"material"`
	TargetUser ListAttribute   `json:"target_user"`
	HSCode     ScalarAttribute `json:"hscode"`
}

// DefaultAttributes returns the fallback template used when detection finds
// nothing or the model omits fields.
func DefaultAttributes() *Attributes {
	return &Attributes{
		Country:    ListAttribute{Value: StringList{UnknownCountry}, Evidence: NoneValue, Confidence: 0.0},
		Size:       ScalarAttribute{Value: NoneValue, Evidence: NoneValue, Confidence: 0.0},
		Material:   ScalarAttribute{Value: NoneValue, Evidence: NoneValue, Confidence: 0.0},
		TargetUser: ListAttribute{Value: StringList{}, Evidence: NoneValue, Confidence: 0.0},
		HSCode:     ScalarAttribute{Value: "", Evidence: NoneValue, Confidence: 0.0},
	}
}

// FillDefaults replaces missing values with the template values so callers
// always see the complete five-field set.
func (a *Attributes) FillDefaults() {
	if len(a.Country.Value) == 0 {
		a.Country.Value = StringList{UnknownCountry}
	}
	if a.Country.Evidence == "" {
		a.Country.Evidence = NoneValue
	}
	if a.Size.Value == "" {
		a.Size.Value = NoneValue
	}
	if a.Size.Evidence == "" {
		a.Size.Evidence = NoneValue
	}
	if a.Material.Value == "" {
		a.Material.Value = NoneValue
	}
	if a.Material.Evidence == "" {
		a.Material.Evidence = NoneValue
	}
	if a.TargetUser.Value == nil {
		a.TargetUser.Value = StringList{}
	}
	if a.TargetUser.Evidence == "" {
		a.TargetUser.Evidence = NoneValue
	}
	if a.HSCode.Evidence == "" {
		a.HSCode.Evidence = NoneValue
	}
}

// Clone returns a deep copy. Cache entries must not alias caller-visible
// state, so both admission and lookup copy.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Country.Value = append(StringList(nil), a.Country.Value...)
	clone.TargetUser.Value = append(StringList(nil), a.TargetUser.Value...)
	return &clone
}

// HasCountry reports whether at least one detected country code is not the
// unknown sentinel.
func (a *Attributes) HasCountry() bool {
	for _, code := range a.Country.Value {
		if code != UnknownCountry {
			return true
		}
	}
	return false
}
