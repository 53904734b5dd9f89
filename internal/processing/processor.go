package processing

import (
	"encoding/json"
	"html"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
)

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

	// Research-tool citation markers such as 【868222379580860†L154-L186】.
	bracketCitation = regexp.MustCompile(`【[^】]*】`)
	daggerCitation  = regexp.MustCompile(`†[A-Z]\d+-\d+`)
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "to": {}, "in": {}, "for": {}, "of": {},
	"and": {}, "on": {}, "with": {}, "over": {}, "after": {}, "from": {},
	"el": {}, "la": {}, "los": {}, "las": {}, "de": {}, "del": {}, "en": {},
	"y": {}, "por": {}, "para": {}, "con": {}, "una": {}, "que": {}, "sobre": {},
}

// Accepted publication date layouts, tried in order.
var dateLayouts = []string{
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	"01-02-2006",
}

// RemoveURLs removes all URLs from the input text.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, " ")
}

// CleanText strips citation artifacts left by research tools and squeezes
// whitespace. Punctuation and URLs are kept.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	cleaned := bracketCitation.ReplaceAllString(input, "")
	cleaned = daggerCitation.ReplaceAllString(cleaned, "")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// tokenText decodes entities, drops URLs and punctuation for keyword counting.
func tokenText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(CleanText(input))
	decoded = RemoveURLs(decoded)
	decoded = punctuation.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// KeywordCounts returns the most frequent words across texts that are not
// stop-words, ordered by count and then alphabetically.
func KeywordCounts(texts []string, limit, minLen int) []models.KeywordCount {
	freq := make(map[string]int)
	for _, text := range texts {
		clean := strings.ToLower(tokenText(text))
		for _, token := range strings.Fields(clean) {
			token = strings.TrimFunc(token, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			})
			if len([]rune(token)) < minLen {
				continue
			}
			if _, skip := stopwords[token]; skip {
				continue
			}
			freq[token]++
		}
	}

	if len(freq) == 0 {
		return nil
	}

	pairs := make([]models.KeywordCount, 0, len(freq))
	for word, count := range freq {
		pairs = append(pairs, models.KeywordCount{Keyword: word, Count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count == pairs[j].Count {
			return pairs[i].Keyword < pairs[j].Keyword
		}
		return pairs[i].Count > pairs[j].Count
	})

	if limit > 0 && limit < len(pairs) {
		pairs = pairs[:limit]
	}
	return pairs
}

// ParsePublicationDate parses the free-text dates found in digests. The
// first layout that matches wins; ok is false when none does.
func ParsePublicationDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseRank reads an integer priority from a JSON value. Fractional numbers
// are truncated; booleans, blank strings and anything non-numeric fail.
func ParseRank(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return truncate(f)
		}
	case float64:
		return truncate(t)
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
