package query

import (
	"cmp"
	"math"
	"slices"

	"github.com/agentmatrix-dev/agentmatrix/pkg/models"
)

// Scored is an item with its similarity to a query.
type Scored struct {
	Item  *models.Item `json:"item"`
	Score float64      `json:"score"`
}

// Cosine returns the cosine similarity of a and b over their common length.
// Zero vectors score 0.
func Cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// RankBySimilarity scores items[i] by the similarity of vectors[i] to q and
// returns them best first. Ties keep input order. limit <= 0 keeps all.
func RankBySimilarity(q []float64, items []*models.Item, vectors [][]float64, limit int) []Scored {
	scored := make([]Scored, 0, len(items))
	for i, it := range items {
		if it == nil || i >= len(vectors) {
			continue
		}
		scored = append(scored, Scored{Item: it, Score: Cosine(q, vectors[i])})
	}
	slices.SortStableFunc(scored, func(a, b Scored) int { return cmp.Compare(b.Score, a.Score) })
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// SearchText is the text embedded for an item.
func SearchText(it *models.Item) string {
	if it == nil {
		return ""
	}
	text := it.Name + ": " + it.Description
	for _, t := range it.Tags {
		text += " " + t
	}
	return text
}
