package generate

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"datenwerk/internal/dataset"
)

// genContext owns all shared generation state: the single seedable random
// source, the faker bound to the same seed, the scenario parameters, and the
// master-data pools transactional generators sample from. It is passed
// explicitly to every generator; there is no package-level random state.
type genContext struct {
	rng       *rand.Rand
	faker     *gofakeit.Faker
	errorRate float64
	start     time.Time
	end       time.Time
	now       time.Time

	products  []dataset.Product
	customers []dataset.Customer
}

func newGenContext(scn Scenario, now time.Time) *genContext {
	seed := scn.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}

	return &genContext{
		rng:       rand.New(rand.NewSource(seed)),
		faker:     gofakeit.New(uint64(seed)),
		errorRate: scn.ErrorRate,
		start:     scn.StartDate,
		end:       scn.EndDate,
		now:       now,
	}
}

// id builds prefixed 8-char record keys, for example SO3f2c81aa.
func (g *genContext) id(prefix string) string {
	return prefix + uuid.NewString()[:8]
}

// refNumber builds reference document numbers like REF482913.
func (g *genContext) refNumber() string {
	return fmt.Sprintf("REF%06d", g.rng.Intn(1000000))
}

// intBetween draws uniformly from [min, max] inclusive.
func (g *genContext) intBetween(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

// floatBetween draws uniformly from [min, max).
func (g *genContext) floatBetween(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// dateBetween draws a uniformly distributed instant in [start, end).
func (g *genContext) dateBetween(start, end time.Time) time.Time {
	span := end.Unix() - start.Unix()
	if span <= 0 {
		return start
	}
	return time.Unix(start.Unix()+g.rng.Int63n(span), 0).UTC()
}

func (g *genContext) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *genContext) pickInt(options []int) int {
	return options[g.rng.Intn(len(options))]
}

func (g *genContext) pickFloat(options []float64) float64 {
	return options[g.rng.Intn(len(options))]
}

// pickWeighted draws from options under a categorical distribution. Weights
// must sum to 1; the last option absorbs floating residue.
func (g *genContext) pickWeighted(options []string, weights []float64) string {
	r := g.rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return options[i]
		}
	}
	return options[len(options)-1]
}

func (g *genContext) sampleProduct() dataset.Product {
	return g.products[g.rng.Intn(len(g.products))]
}

func (g *genContext) sampleCustomer() dataset.Customer {
	return g.customers[g.rng.Intn(len(g.customers))]
}
