package processing_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
	"github.com/juansegiraldo/KeplerNewsletter/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "bracket citation", input: "Court orders return【868222379580860†L154-L186】 of painting", want: "Court orders return of painting"},
		{name: "dagger marker", input: "Ruling †L12-34 issued", want: "Ruling issued"},
		{name: "collapse whitespace", input: "foo\n\nbar\t baz", want: "foo bar baz"},
		{name: "keeps punctuation", input: "Sotheby's sale: $2m!", want: "Sotheby's sale: $2m!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processing.CleanText(tt.input); got != tt.want {
				t.Fatalf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRemoveURLs(t *testing.T) {
	require.Equal(t, "Check   for more", processing.RemoveURLs("Check https://example.com for more"))
	require.Equal(t, "Hello world", processing.RemoveURLs("Hello world"))
}

func TestKeywordCounts(t *testing.T) {
	texts := []string{
		"Restitution of looted painting",
		"Painting restitution claim in Germany",
		"Restitución de obras https://example.com/painting",
	}
	got := processing.KeywordCounts(texts, 3, 4)
	want := []models.KeywordCount{
		{Keyword: "painting", Count: 2},
		{Keyword: "restitution", Count: 2},
		{Keyword: "claim", Count: 1},
	}
	require.Equal(t, want, got)

	require.Nil(t, processing.KeywordCounts(nil, 5, 3))
	require.Nil(t, processing.KeywordCounts([]string{"the of and"}, 5, 1))
}

func TestKeywordCountsUnlimited(t *testing.T) {
	got := processing.KeywordCounts([]string{"alpha beta gamma"}, 0, 1)
	require.Len(t, got, 3)
}

func TestParsePublicationDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   time.Time
		wantOK bool
	}{
		{name: "day first dashes", raw: "05-03-2025", want: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "iso", raw: "2024-06-01", want: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "day first slashes", raw: "31/12/2024", want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "month first fallback", raw: "12-31-2024", want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "surrounding space", raw: " 2024-01-01 ", want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "empty", raw: "", wantOK: false},
		{name: "free text", raw: "last week", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := processing.ParsePublicationDate(tt.raw)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   int
		wantOK bool
	}{
		{name: "json integer", input: json.Number("2"), want: 2, wantOK: true},
		{name: "json float", input: json.Number("3.0"), want: 3, wantOK: true},
		{name: "float", input: 1.0, want: 1, wantOK: true},
		{name: "numeric string", input: " 7 ", want: 7, wantOK: true},
		{name: "word", input: "high", wantOK: false},
		{name: "bool", input: true, wantOK: false},
		{name: "nil", input: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := processing.ParseRank(tt.input)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
