package merge

import (
	"sort"

	"github.com/juansegiraldo/KeplerNewsletter/internal/models"
	"github.com/juansegiraldo/KeplerNewsletter/internal/processing"
)

// UnrankedSentinel is the rank given to items without a usable rank.
const UnrankedSentinel = 10000

type sortKey struct {
	rank     int
	ts       int64
	headline string
	id       string
}

func keyOf(it *models.Item) sortKey {
	k := sortKey{rank: UnrankedSentinel, headline: it.String("headline"), id: it.ID}
	if r, ok := processing.ParseRank(it.Fields["rank"]); ok {
		k.rank = r
	}
	if ts, ok := processing.ParsePublicationDate(it.String("publication_date")); ok {
		k.ts = ts.Unix()
	}
	return k
}

// SortItems orders items by rank (ascending, unranked last), then
// publication date (newest first, undated as oldest), then headline. The item
// id breaks any remaining tie so the order never depends on input order.
func SortItems(items []*models.Item) {
	keys := make(map[*models.Item]sortKey, len(items))
	for _, it := range items {
		keys[it] = keyOf(it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := keys[items[i]], keys[items[j]]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.ts != b.ts {
			return a.ts > b.ts
		}
		if a.headline != b.headline {
			return a.headline < b.headline
		}
		return a.id < b.id
	})
}
