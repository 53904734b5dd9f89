package merge

import (
	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
	"github.com/juansegiraldo/KeplerNewsletter/internal/processing"
)

// Aggregate computes frequency distributions over the merged items and
// collects the analytics each source brought along.
func Aggregate(items []*models.Item, sources []*models.SourceDocument, opts Options) models.Analytics {
	a := models.Analytics{
		Totals: models.Totals{
			ItemsCombined: len(items),
			SourceItems:   map[string]int{},
		},
		Distributions: models.Distributions{
			NormalizedCategory: map[string]int{},
			Jurisdiction:       map[string]int{},
			LegalStage:         map[string]int{},
			ComplianceLabel:    map[string]int{},
		},
		SourceAnalytics: map[string]any{},
	}

	ids := make(map[string]struct{}, len(items))
	headlines := make([]string, 0, len(items))
	for _, it := range items {
		ids[it.ID] = struct{}{}
		a.Distributions.NormalizedCategory[it.NormalizedCategory]++
		a.Distributions.Jurisdiction[bucketLabel(it, "jurisdiction")]++
		a.Distributions.LegalStage[bucketLabel(it, "legal_stage")]++
		for _, label := range it.ComplianceLabels {
			a.Distributions.ComplianceLabel[label]++
		}
		if h := it.String("headline"); h != "" {
			headlines = append(headlines, h)
		}
	}
	a.Totals.UniqueItemIDs = len(ids)

	for _, doc := range sources {
		if doc == nil {
			continue
		}
		a.Totals.SourceItems[doc.Name] = doc.ItemCount()
		if models.Truthy(doc.Analytics) {
			a.SourceAnalytics[doc.Name] = models.CloneValue(doc.Analytics)
		}
	}

	a.TopKeywords = processing.KeywordCounts(headlines, opts.keywordLimit(), opts.KeywordMinLength)
	if a.TopKeywords == nil {
		a.TopKeywords = []models.KeywordCount{}
	}
	return a
}
