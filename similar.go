package namesdataset

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// maxSimilarDistance caps SimilarNames to keep the full-dataset scan cheap
// and the suggestions meaningful.
const maxSimilarDistance = 3

// SimilarResult lists dataset names close to a query, best match first.
type SimilarResult struct {
	FirstNames []string `json:"first_names"`
	LastNames  []string `json:"last_names"`
}

// SimilarNames returns the names within maxDistance edits of the normalized
// name in each dataset, ordered by distance and then alphabetically.
// maxDistance is clamped to [0, 3]; with 0 only an exact key matches.
// Search stays exact; this is meant for "did you mean" suggestions.
func (nd *NameDataset) SimilarNames(name string, maxDistance int) SimilarResult {
	res := SimilarResult{FirstNames: []string{}, LastNames: []string{}}

	key := Normalize(name)
	if key == "" {
		return res
	}
	maxDistance = max(0, min(maxDistance, maxSimilarDistance))

	res.FirstNames = similarIn(nd.firstNames, key, maxDistance)
	res.LastNames = similarIn(nd.lastNames, key, maxDistance)
	return res
}

type scoredName struct {
	name string
	dist int
}

func similarIn(ds *Dataset, key string, maxDistance int) []string {
	if maxDistance == 0 {
		if _, ok := ds.lookup(key); ok {
			return []string{key}
		}
		return []string{}
	}

	lowerKey := strings.ToLower(key)
	keyLen := utf8.RuneCountInString(lowerKey)

	var scored []scoredName
	for _, candidate := range ds.order() {
		lowerCandidate := strings.ToLower(candidate)
		// Rune-length difference is a lower bound on edit distance.
		if abs(utf8.RuneCountInString(lowerCandidate)-keyLen) > maxDistance {
			continue
		}
		dist := levenshtein.ComputeDistance(lowerKey, lowerCandidate)
		if dist <= maxDistance {
			scored = append(scored, scoredName{name: candidate, dist: dist})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].dist != scored[j].dist {
			return scored[i].dist < scored[j].dist
		}
		return scored[i].name < scored[j].name
	})

	names := make([]string, len(scored))
	for i, s := range scored {
		names[i] = s.name
	}
	return names
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
