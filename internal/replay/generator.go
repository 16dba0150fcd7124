package replay

import (
	"fmt"
	"math/rand/v2"
)

var tickers = []string{"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "SBIN", "ITC", "LT", "WIPRO", "TATAMOTORS"}

var sources = []string{"Moneycontrol", "Economic Times", "BSE India", "NSE", "LiveMint"}

// templates cover every impact category plus headlines that match none.
var templates = []string{
	"%s gains as cabinet approves import duty cut",
	"%s shares surge after govt policy change",
	"%s bags order worth Rs 2,000 crore",
	"%s secures contract from European bank",
	"FII stake bought in %s via block deal",
	"%s benefits as steel prices ease input cost",
	"%s acquires rival in strategic acquisition",
	"%s gets buy rating, target raised",
	"%s Q1 profit beats estimate",
	"%s net profit rises on strong demand",
	"%s shares plunge after weak guidance",
	"%s holds annual general meeting",
}

// generator produces reproducible observation batches. Roughly a third of
// the headlines are repeated by a second source so consolidation is exercised.
type generator struct {
	rng *rand.Rand
}

func newGenerator(seed uint64) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *generator) batch(size int) Batch {
	obs := make([]Observation, 0, size)
	for len(obs) < size {
		stock := tickers[g.rng.IntN(len(tickers))]
		headline := fmt.Sprintf(templates[g.rng.IntN(len(templates))], stock)
		first := g.rng.IntN(len(sources))
		obs = append(obs, Observation{Stock: stock, Headline: headline, Source: sources[first]})

		if len(obs) < size && g.rng.IntN(3) == 0 {
			second := (first + 1 + g.rng.IntN(len(sources)-1)) % len(sources)
			obs = append(obs, Observation{Stock: stock, Headline: headline, Source: sources[second]})
		}
	}
	return Batch{Observations: obs}
}

func (g *generator) batches(n, size int) []Batch {
	out := make([]Batch, n)
	for i := range out {
		out[i] = g.batch(size)
	}
	return out
}

// outcome returns a synthetic actual score near predicted.
func (g *generator) outcome(predicted float64) float64 {
	return predicted + (g.rng.Float64()*2 - 0.5)
}
