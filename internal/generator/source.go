package generator

import (
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// Source is the random stream behind every draw the generator makes.
// Names and sentences are produced by gofakeit on the same stream, so a
// seed fully determines the output.
type Source struct {
	rng  *rand.Rand
	fake *gofakeit.Faker
}

// NewSource returns a Source seeded with seed.
func NewSource(seed int64) *Source {
	rng := rand.New(rand.NewSource(seed))
	return &Source{
		rng:  rng,
		fake: gofakeit.NewCustom(rng),
	}
}

// chance reports true with probability p.
func (s *Source) chance(p float64) bool {
	return s.rng.Float64() < p
}

// between returns a uniform integer in [lo, hi].
func (s *Source) between(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

func (s *Source) pick(items []string) string {
	return items[s.rng.Intn(len(items))]
}

func (s *Source) firstName() string {
	return s.fake.FirstName()
}

// sentence returns a capitalised sentence of n words without the trailing
// period.
func (s *Source) sentence(n int) string {
	return strings.TrimSuffix(s.fake.Sentence(n), ".")
}
