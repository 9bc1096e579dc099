package scoredomain

import (
	"cmp"
	"slices"
)

// AssignRanks ranks visible participants by score descending with ties
// sharing a rank (1, 1, 3). Hidden participants all get one past the number of
// visible ones.
func AssignRanks(results map[int64]ParticipationResult) {
	visible := make([]int64, 0, len(results))
	for id, r := range results {
		if !r.Hidden {
			visible = append(visible, id)
		}
	}
	slices.SortFunc(visible, func(a, b int64) int {
		if c := cmp.Compare(results[b].Score, results[a].Score); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	rank := 0
	for i, id := range visible {
		r := results[id]
		if i == 0 || r.Score < results[visible[i-1]].Score {
			rank = i + 1
		}
		r.Rank = rank
		results[id] = r
	}

	hiddenRank := len(visible) + 1
	for id, r := range results {
		if r.Hidden {
			r.Rank = hiddenRank
			results[id] = r
		}
	}
}
