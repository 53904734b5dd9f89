package merge

import (
	"fmt"
	"log/slog"

	"github.com/juansegiraldo/KeplerNewsletter/internal/dedupe"
	"github.com/juansegiraldo/KeplerNewsletter/internal/logger"
	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
	"github.com/juansegiraldo/KeplerNewsletter/internal/processing"
	"github.com/juansegiraldo/KeplerNewsletter/internal/taxonomy"
)

// ItemSet is the accumulator of the item fold: merged items keyed by id,
// remembered in first-seen order.
type ItemSet struct {
	byID  map[string]*models.Item
	order []string
}

// Get returns the merged item with the given id.
func (s *ItemSet) Get(id string) (*models.Item, bool) {
	it, ok := s.byID[id]
	return it, ok
}

// Len returns the number of distinct item ids.
func (s *ItemSet) Len() int {
	return len(s.order)
}

// Items returns the merged items in first-seen order.
func (s *ItemSet) Items() []*models.Item {
	out := make([]*models.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// SyntheticID names an item that arrived without an item_id. It depends on
// the item's position, so reordering a source changes it.
func SyntheticID(sourceName string, index int) string {
	return fmt.Sprintf("SYN-%s-%d", sourceName, index)
}

// MergeItems folds the items of every source, in order, into one ItemSet.
// The first source to supply a non-empty value for a field wins; later
// sources only fill fields that are still empty.
func MergeItems(sources []*models.SourceDocument, tax *taxonomy.Taxonomy, opts Options) *ItemSet {
	if tax == nil {
		tax = taxonomy.Default()
	}
	log := logger.OrDiscard(opts.Logger)

	set := &ItemSet{byID: make(map[string]*models.Item)}
	for _, doc := range sources {
		if doc == nil {
			continue
		}
		for idx, raw := range doc.Items {
			if raw == nil {
				log.Debug("skipping non-object item", slog.String("source", doc.Name), slog.Int("index", idx))
				continue
			}
			id := models.Text(raw[models.KeyItemID])
			if id == "" {
				id = SyntheticID(doc.Name, idx)
			}

			existing, ok := set.byID[id]
			if !ok {
				set.byID[id] = newItem(id, doc.Name, raw, tax, opts)
				set.order = append(set.order, id)
				continue
			}
			mergeInto(existing, doc.Name, raw, tax, opts)
			log.Debug("merged duplicate item", slog.String("id", id), slog.String("source", doc.Name))
		}
	}
	return set
}

func newItem(id, sourceName string, raw map[string]any, tax *taxonomy.Taxonomy, opts Options) *models.Item {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if skipField(k) {
			continue
		}
		fields[k] = models.CloneValue(v)
	}
	if opts.CleanText {
		cleanFields(fields)
	}

	return &models.Item{
		ID:                 id,
		Fields:             fields,
		NormalizedCategory: tax.NormalizeCategory(fields),
		ComplianceLabels:   taxonomy.ComplianceLabels(raw["compliance_flags"]),
		OriginSources:      []string{sourceName},
		OriginPayloads:     map[string]map[string]any{sourceName: models.CloneMap(raw)},
	}
}

func mergeInto(it *models.Item, sourceName string, raw map[string]any, tax *taxonomy.Taxonomy, opts Options) {
	it.OriginSources = dedupe.AppendUnique(it.OriginSources, sourceName)
	it.OriginPayloads[sourceName] = models.CloneMap(raw)

	for k, v := range raw {
		if skipField(k) {
			continue
		}
		fillIfEmpty(it.Fields, k, v)
	}
	if opts.CleanText {
		cleanFields(it.Fields)
	}

	it.ComplianceLabels = taxonomy.SortedUnion(it.ComplianceLabels, taxonomy.ComplianceLabels(raw["compliance_flags"]))
	// Fill-if-empty may have kept older flags, so the upgrade looks at what
	// this source said about the item.
	if it.NormalizedCategory == taxonomy.Uncategorized {
		it.NormalizedCategory = tax.NormalizeCategory(raw)
	}
}

// fillIfEmpty writes v into dst[key] only when the current value is empty.
// An empty v never replaces a key that is already present.
func fillIfEmpty(dst map[string]any, key string, v any) {
	current, present := dst[key]
	if !models.IsEmpty(current) {
		return
	}
	if present && models.IsEmpty(v) {
		return
	}
	dst[key] = models.CloneValue(v)
}

func skipField(key string) bool {
	if key == models.KeyItemID {
		return true
	}
	_, computed := models.ComputedKeys[key]
	return computed
}

// cleanFields strips citation artifacts from the headline and summary.
func cleanFields(fields map[string]any) {
	if s, ok := fields["headline"].(string); ok {
		fields["headline"] = processing.CleanText(s)
	}
	if content, ok := fields["content"].(map[string]any); ok {
		if s, ok := content["summary"].(string); ok {
			content["summary"] = processing.CleanText(s)
		}
	}
}
