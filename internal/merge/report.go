// Package merge reconciles several digest sources into one MergedReport:
// items are folded by identity, sorted deterministically, clustered and
// counted, and the per-source metadata and summaries are combined.
package merge

import (
	"log/slog"
	"time"

	"github.com/juansegiraldo/KeplerNewsletter/internal/logger"
	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
	"github.com/juansegiraldo/KeplerNewsletter/internal/taxonomy"
)

const (
	// Generator identifies this tool in the report.
	Generator = "kepler-artlaw-merger"
	// Version is the report format version.
	Version = "1.0.0"

	defaultKeywordLimit = 10
)

// Options tunes a merge run. The zero value is usable.
type Options struct {
	// CleanText strips citation artifacts from merged headlines and summaries.
	CleanText        bool
	KeywordLimit     int
	KeywordMinLength int
	// Now stamps generated_at; time.Now when nil.
	Now    func() time.Time
	Logger *slog.Logger
}

func (o Options) keywordLimit() int {
	if o.KeywordLimit <= 0 {
		return defaultKeywordLimit
	}
	return o.KeywordLimit
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Build runs the whole pipeline over sources, in the order given.
func Build(sources []*models.SourceDocument, tax *taxonomy.Taxonomy, opts Options) *models.MergedReport {
	log := logger.OrDiscard(opts.Logger)

	items := MergeItems(sources, tax, opts).Items()
	SortItems(items)
	clusters := BuildClusters(items)

	report := &models.MergedReport{
		Metadata:         MergeMetadata(sources),
		ExecutiveSummary: MergeSummaries(sources),
		Items:            items,
		Clusters:         clusters,
		Analytics:        Aggregate(items, sources, opts),
		Sources:          sourceInfos(sources),
		GeneratedAt:      opts.now().UTC().Format(time.RFC3339),
		Generator:        Generator,
		Version:          Version,
	}

	log.Debug("report built",
		slog.Int("sources", len(report.Sources)),
		slog.Int("items", len(items)),
		slog.Int("categories", len(report.Analytics.Distributions.NormalizedCategory)),
		slog.Int("jurisdictions", len(clusters.ByJurisdiction)),
	)
	return report
}

func sourceInfos(sources []*models.SourceDocument) map[string]models.SourceInfo {
	out := make(map[string]models.SourceInfo, len(sources))
	for _, doc := range sources {
		if doc == nil {
			continue
		}
		out[doc.Name] = models.SourceInfo{
			Metadata:         models.CloneMap(doc.Metadata),
			Analytics:        models.CloneValue(doc.Analytics),
			DiscardedItems:   models.CloneValue(doc.DiscardedItems),
			QualityAssurance: models.CloneValue(doc.QualityAssurance),
			ItemCount:        doc.ItemCount(),
			Digest:           doc.Digest,
		}
	}
	return out
}
