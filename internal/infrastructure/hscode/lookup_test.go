package hscode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLookup(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)
	assert.Greater(t, l.TotalItems(), 0)
}

func TestNewLookupFromJSON_BadData(t *testing.T) {
	_, err := NewLookupFromJSON([]byte("not json"))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	tests := []struct {
		name    string
		keyword string
		limit   int
		want    int
	}{
		{name: "english keyword", keyword: "trousers", limit: 10, want: 5},
		{name: "case insensitive", keyword: "TROUSERS", limit: 10, want: 5},
		{name: "japanese keyword", keyword: "セーター", limit: 10, want: 2},
		{name: "chinese keyword", keyword: "咖啡", limit: 10, want: 1},
		{name: "code substring", keyword: "6204", limit: 10, want: 3},
		{name: "limit caps results", keyword: "trousers", limit: 2, want: 2},
		{name: "no match", keyword: "zeppelin", limit: 10, want: 0},
		{name: "empty keyword", keyword: "", limit: 10, want: 0},
		{name: "zero limit", keyword: "trousers", limit: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, l.Search(tt.keyword, tt.limit), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "exact match", code: "6204620000", want: true},
		{name: "formatted exact match", code: "6204.62.0000", want: true},
		{name: "heading match with unlisted suffix", code: "6204629999", want: true},
		{name: "bare heading", code: "620462", want: true},
		{name: "unknown heading", code: "9999990000", want: false},
		{name: "too short", code: "62046", want: false},
		{name: "empty", code: "", want: false},
		{name: "no digits", code: "apparel", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Validate(tt.code))
		})
	}
}

func TestGetByCode(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	item := l.GetByCode("6204620000")
	require.NotNil(t, item)
	assert.Equal(t, "Women's trousers, woven, of cotton", item.English)

	assert.Nil(t, l.GetByCode("0000000000"))
	assert.NotNil(t, l.GetByCode("6204.62.0000"))
}

func TestFindSimilar(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	similar := l.FindSimilar("6204999999", 10)
	assert.Len(t, similar, 3)
	for _, item := range similar {
		assert.Equal(t, "6204", item.Code[:4])
	}

	assert.Empty(t, l.FindSimilar("620", 10))
	assert.Empty(t, l.FindSimilar("1111", 10))
}

func TestGetValidated_ExactMatch(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	v := l.GetValidated("6204620000", "")
	assert.True(t, v.IsValid)
	assert.Equal(t, "6204620000", v.Original)
	require.NotNil(t, v.MatchedItem)
	assert.Equal(t, "6204620000", v.MatchedItem.Code)
	assert.Empty(t, v.Suggestions)
}

func TestGetValidated_HeadingMatch(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	v := l.GetValidated("6204621234", "")
	assert.True(t, v.IsValid)
	assert.Nil(t, v.MatchedItem)
	assert.NotEmpty(t, v.Suggestions)
}

func TestGetValidated_KeywordFallback(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	v := l.GetValidated("9999990000", "trousers")
	assert.False(t, v.IsValid)
	assert.Nil(t, v.MatchedItem)
	assert.NotEmpty(t, v.Suggestions)
}

func TestGetValidated_NoMatchNoKeywords(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	v := l.GetValidated("9999990000", "")
	assert.False(t, v.IsValid)
	assert.NotNil(t, v.Suggestions)
	assert.Empty(t, v.Suggestions)
}

func TestGetValidated_EmptyCode(t *testing.T) {
	l, err := NewLookup()
	require.NoError(t, err)

	v := l.GetValidated("", "trousers")
	assert.False(t, v.IsValid)
	assert.Empty(t, v.Suggestions)
}
