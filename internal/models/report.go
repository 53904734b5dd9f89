package models

// SourceDocument is one ingested digest file. Items keeps the original
// positions: entries that were not JSON objects are stored as nil so that
// positional identifiers stay stable. Analytics, DiscardedItems and
// QualityAssurance are kept exactly as decoded, nil when absent.
type SourceDocument struct {
	Name             string
	Digest           string
	Metadata         map[string]any
	ExecutiveSummary map[string]any
	Items            []map[string]any
	DiscardedItems   any
	Analytics        any
	QualityAssurance any
}

// ItemCount returns the number of object items in the document.
func (d *SourceDocument) ItemCount() int {
	n := 0
	for _, it := range d.Items {
		if it != nil {
			n++
		}
	}
	return n
}

// ClusterIndex partitions item identifiers along four dimensions. Every
// bucket keeps the global item order.
type ClusterIndex struct {
	ByNormalizedCategory map[string][]string `json:"by_normalized_category"`
	ByJurisdiction       map[string][]string `json:"by_jurisdiction"`
	ByLegalStage         map[string][]string `json:"by_legal_stage"`
	ByComplianceLabel    map[string][]string `json:"by_compliance_label"`
}

// KeywordCount is one entry of the headline keyword distribution.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Totals counts the merged items and what each source contributed.
type Totals struct {
	ItemsCombined int            `json:"items_combined"`
	UniqueItemIDs int            `json:"unique_item_ids"`
	SourceItems   map[string]int `json:"source_items"`
}

// Distributions are item counts per bucket. Items without a jurisdiction or
// legal stage are counted under "Unspecified".
type Distributions struct {
	NormalizedCategory map[string]int `json:"normalized_category"`
	Jurisdiction       map[string]int `json:"jurisdiction"`
	LegalStage         map[string]int `json:"legal_stage"`
	ComplianceLabel    map[string]int `json:"compliance_label"`
}

// Analytics is the statistics block read by the report renderers.
// SourceAnalytics carries the analytics block of every source that had a
// non-empty one.
type Analytics struct {
	Totals          Totals         `json:"totals"`
	Distributions   Distributions  `json:"distributions"`
	SourceAnalytics map[string]any `json:"source_analytics"`
	TopKeywords     []KeywordCount `json:"top_keywords"`
}

// SourceInfo preserves what a source said about itself, for audit.
type SourceInfo struct {
	Metadata         map[string]any `json:"metadata"`
	Analytics        any            `json:"analytics"`
	DiscardedItems   any            `json:"discarded_items"`
	QualityAssurance any            `json:"quality_assurance"`
	ItemCount        int            `json:"item_count"`
	Digest           string         `json:"digest"`
}

// MergedReport is the artifact written by the merger.
type MergedReport struct {
	Metadata         map[string]any        `json:"metadata"`
	ExecutiveSummary map[string]any        `json:"executive_summary"`
	Items            []*Item               `json:"items"`
	Clusters         ClusterIndex          `json:"clusters"`
	Analytics        Analytics             `json:"analytics"`
	Sources          map[string]SourceInfo `json:"sources"`
	GeneratedAt      string                `json:"generated_at"`
	Generator        string                `json:"generator"`
	Version          string                `json:"version"`
}
