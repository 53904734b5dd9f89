package merge

import "github.com/juansegiraldo/KeplerNewsletter/internal/models"

// Unspecified is the bucket for items without a jurisdiction or legal stage.
const Unspecified = "Unspecified"

// BuildClusters groups the ids of the already sorted items. Buckets keep the
// order of items.
func BuildClusters(items []*models.Item) models.ClusterIndex {
	idx := models.ClusterIndex{
		ByNormalizedCategory: map[string][]string{},
		ByJurisdiction:       map[string][]string{},
		ByLegalStage:         map[string][]string{},
		ByComplianceLabel:    map[string][]string{},
	}
	for _, it := range items {
		category := it.NormalizedCategory
		idx.ByNormalizedCategory[category] = append(idx.ByNormalizedCategory[category], it.ID)

		jurisdiction := bucketLabel(it, "jurisdiction")
		idx.ByJurisdiction[jurisdiction] = append(idx.ByJurisdiction[jurisdiction], it.ID)

		stage := bucketLabel(it, "legal_stage")
		idx.ByLegalStage[stage] = append(idx.ByLegalStage[stage], it.ID)

		for _, label := range it.ComplianceLabels {
			idx.ByComplianceLabel[label] = append(idx.ByComplianceLabel[label], it.ID)
		}
	}
	return idx
}

func bucketLabel(it *models.Item, key string) string {
	if s := it.String(key); s != "" {
		return s
	}
	return Unspecified
}
