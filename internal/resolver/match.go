package resolver

import (
	"iter"
	"strings"

	"github.com/MeKo-Tech/kamera/internal/catalog"
	"github.com/MeKo-Tech/kamera/internal/similarity"
)

// DefaultThreshold is the minimum similarity a fuzzy match must exceed.
const DefaultThreshold = 90.0

// Candidates is a domain to match against. *catalog.Table satisfies it for
// every entry type.
type Candidates interface {
	Value(key string) (string, bool)
	KeysInOrder() iter.Seq[string]
}

// Match resolves input against candidates in stages: exact key, unique
// substring, then best fuzzy score strictly above threshold. When several
// keys share the best score the first in key order wins.
func Match(input string, candidates Candidates, threshold float64) Result {
	res := Result{Input: input}
	key := catalog.Normalize(input)
	if key == "" {
		res.Status = StatusInvalid
		return res
	}

	if v, ok := candidates.Value(key); ok {
		return resolved(res, key, v, MethodExact, 100)
	}

	if k, ok := uniqueContaining(candidates.KeysInOrder(), key); ok {
		v, _ := candidates.Value(k)
		return resolved(res, k, v, MethodSubstring, similarity.Similarity(key, k))
	}

	best, score, compared := closest(key, candidates.KeysInOrder(), threshold)
	res.Compared = compared
	if best == "" {
		res.Status = StatusNoMatch
		return res
	}
	v, _ := candidates.Value(best)
	return resolved(res, best, v, MethodFuzzy, score)
}

func resolved(res Result, key, value string, m Method, score float64) Result {
	res.Key = key
	res.Value = value
	res.Status = StatusResolved
	res.Method = m
	res.Score = score
	return res
}

func uniqueContaining(keys iter.Seq[string], sub string) (string, bool) {
	found, n := "", 0
	for k := range keys {
		if strings.Contains(k, sub) {
			if n++; n > 1 {
				return "", false
			}
			found = k
		}
	}
	return found, n == 1
}

// closest returns the best scoring key above threshold. Keys that cannot beat
// the current best are rejected by a bounded distance check before scoring.
func closest(key string, keys iter.Seq[string], threshold float64) (string, float64, int) {
	keyLen := similarity.RuneLen(key)
	best, bestScore, compared := "", 0.0, 0
	for k := range keys {
		compared++
		maxLen := max(keyLen, similarity.RuneLen(k))
		budget := similarity.EditBudget(maxLen, max(threshold, bestScore))
		if budget < 0 {
			continue
		}
		d, ok := similarity.BoundedDistance(key, k, budget)
		if !ok {
			continue
		}
		s := similarity.FromDistance(d, maxLen)
		if s > threshold && s > bestScore {
			best, bestScore = k, s
		}
	}
	return best, bestScore, compared
}
