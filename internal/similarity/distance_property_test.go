package similarity

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSimilarity_Identity(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("similarity(s, s) == 100 for non-empty s", prop.ForAll(
		func(s string) bool {
			return Similarity(s, s) == 100
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
	))

	properties.TestingRun(t)
}

func TestSimilarity_Symmetric(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("similarity(a, b) == similarity(b, a)", prop.ForAll(
		func(a, b string) bool {
			return Similarity(a, b) == Similarity(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("similarity stays within [0, 100]", prop.ForAll(
		func(a, b string) bool {
			s := Similarity(a, b)
			return s >= 0 && s <= 100
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestDistance_TriangleInequality(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("d(a, c) <= d(a, b) + d(b, c)", prop.ForAll(
		func(a, b, c string) bool {
			return Distance(a, c) <= Distance(a, b)+Distance(b, c)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("d(a, b) is bounded by the longer string", prop.ForAll(
		func(a, b string) bool {
			return Distance(a, b) <= max(len([]rune(a)), len([]rune(b)))
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestBoundedDistance_AgreesWithDistance(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("bounded distance matches the full table within budget", prop.ForAll(
		func(a, b string, budget int) bool {
			want := Distance(a, b)
			got, ok := BoundedDistance(a, b, budget)
			if want <= budget {
				return ok && got == want
			}
			return !ok
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
