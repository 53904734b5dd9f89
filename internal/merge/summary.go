package merge

import (
	"github.com/juansegiraldo/KeplerNewsletter/internal/dedupe"
	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
)

// mergedField is one key of a merged section and the source keys it is read
// from, in order of preference.
type mergedField struct {
	name  string
	from  []string
	multi bool
}

// Metadata keys of the merged report. Art-law digests say report_title and
// coverage_period where the other digests say title and period.
var metadataFields = []mergedField{
	{name: "title", from: []string{"title", "report_title"}},
	{name: "subtitle", from: []string{"subtitle"}},
	{name: "period", from: []string{"period", "coverage_period"}},
	{name: "parameters", from: []string{"parameters"}},
	{name: "processing", from: []string{"processing"}},
	{name: "validation", from: []string{"validation"}},
	{name: "language", from: []string{"language"}},
	{name: "generation_date", from: []string{"generation_date"}},
	{name: "lookback_days", from: []string{"lookback_days"}},
	{name: "selection_days", from: []string{"selection_days"}},
}

// Executive-summary keys of the merged report. multi fields accumulate
// across sources; the rest keep the first non-empty value.
var summaryFields = []mergedField{
	{name: "bullets", from: []string{"annual_bullets", "bullets"}, multi: true},
	{name: "key_findings", from: []string{"key_findings"}, multi: true},
	{name: "overview", from: []string{"annual_overview", "overview"}},
	{name: "key_themes", from: []string{"key_themes", "themes"}, multi: true},
	{name: "geographical_focus", from: []string{"geographical_focus", "geographic_focus"}, multi: true},
	{name: "trend_analysis", from: []string{"trend_analysis"}},
}

// MergeMetadata combines source metadata, first non-empty value per field,
// and records the contributing sources under source_files. Fields no source
// supplies are present as null.
func MergeMetadata(sources []*models.SourceDocument) map[string]any {
	out := mergeSection(sources, metadataFields, func(d *models.SourceDocument) map[string]any {
		return d.Metadata
	})

	names := dedupe.NewOrderedSet()
	for _, doc := range sources {
		if doc != nil {
			names.Add(doc.Name)
		}
	}
	files := names.Values()
	if files == nil {
		files = []string{}
	}
	out["source_files"] = files
	return out
}

// MergeSummaries concatenates the list fields of every executive summary,
// dropping exact duplicates, and keeps the first non-empty narrative fields.
func MergeSummaries(sources []*models.SourceDocument) map[string]any {
	return mergeSection(sources, summaryFields, func(d *models.SourceDocument) map[string]any {
		return d.ExecutiveSummary
	})
}

func mergeSection(sources []*models.SourceDocument, fields []mergedField, section func(*models.SourceDocument) map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	seen := make(map[string]*dedupe.OrderedSet)
	for _, f := range fields {
		if f.multi {
			out[f.name] = []any{}
			seen[f.name] = dedupe.NewOrderedSet()
		} else {
			out[f.name] = nil
		}
	}

	for _, doc := range sources {
		if doc == nil {
			continue
		}
		m := section(doc)
		for _, f := range fields {
			if !f.multi {
				if !models.IsEmpty(out[f.name]) {
					continue
				}
				for _, k := range f.from {
					if v := m[k]; !models.IsEmpty(v) {
						out[f.name] = models.CloneValue(v)
						break
					}
				}
				continue
			}

			list := out[f.name].([]any)
			for _, k := range f.from {
				for _, e := range listEntries(m[k]) {
					key, err := entryKey(e)
					if err != nil || !seen[f.name].Add(key) {
						continue
					}
					list = append(list, models.CloneValue(e))
				}
			}
			out[f.name] = list
		}
	}
	return out
}

func listEntries(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []any{t}
	default:
		return []any{t}
	}
}

// entryKey is the identity used for list de-duplication: the string itself,
// or the compact JSON encoding for structured entries.
func entryKey(e any) (string, error) {
	if s, ok := e.(string); ok {
		return s, nil
	}
	b, err := models.MarshalPlain(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
