package scoring

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// neutralSentiment stands in for an average over arguments that were never
// analyzed.
const neutralSentiment = 0.5

// Fallback scores a debate locally when the ML API is unavailable. Scores get
// a uniform jitter in [-amplitude, amplitude] from a seedable source.
type Fallback struct {
	mu        sync.Mutex
	rng       *rand.Rand
	amplitude float64
}

// NewFallback returns a scorer. A zero seed seeds from the clock.
func NewFallback(amplitude float64, seed uint64) *Fallback {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Fallback{
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		amplitude: amplitude,
	}
}

type authorTally struct {
	id            string
	username      string
	count         int
	words         int
	sentimentSum  float64
	analyzedCount int
}

func (a *authorTally) composite() float64 {
	avg := averageSentiment(a.sentimentSum, a.analyzedCount)
	return 0.4*float64(a.count) + 0.001*float64(a.words) + 0.6*avg
}

// averageSentiment ignores unanalyzed arguments, whose stored 0 is a
// placeholder rather than a reading.
func averageSentiment(sum float64, analyzed int) float64 {
	if analyzed == 0 {
		return neutralSentiment
	}
	return sum / float64(analyzed)
}

func (f *Fallback) Score(samples []Sample) Verdict {
	var authors []*authorTally
	byID := make(map[string]*authorTally)
	totalWords := 0
	sentimentSum := 0.0
	analyzed := 0
	for _, s := range samples {
		tally, ok := byID[s.AuthorID]
		if !ok {
			tally = &authorTally{id: s.AuthorID, username: s.Username}
			byID[s.AuthorID] = tally
			authors = append(authors, tally)
		}
		words := len(strings.Fields(s.Text))
		tally.count++
		tally.words += words
		if s.Analyzed {
			tally.sentimentSum += s.Sentiment
			tally.analyzedCount++
			sentimentSum += s.Sentiment
			analyzed++
		}
		totalWords += words
	}

	v := Verdict{Winner: Draw, Source: SourceFallback}
	switch {
	case len(authors) == 1:
		v.Winner, v.WinnerID = authors[0].username, authors[0].id
	case len(authors) >= 2:
		a, b := authors[0].composite(), authors[1].composite()
		if a > b {
			v.Winner, v.WinnerID = authors[0].username, authors[0].id
		} else if b > a {
			v.Winner, v.WinnerID = authors[1].username, authors[1].id
		}
	}

	n := float64(max(len(samples), 1))
	avgWords := float64(totalWords) / n
	avgSentiment := averageSentiment(sentimentSum, analyzed)

	baseLogic := clamp(0.5+avgWords/50, 0.3, 0.9)
	basePersuasion := clamp(0.4+math.Abs(avgSentiment-0.5), 0.3, 0.9)
	baseEngagement := clamp(float64(len(samples))/10, 0.4, 0.9)

	v.LogicScore = clamp(baseLogic+f.jitter(), 0.25, 0.95)
	v.PersuasivenessScore = clamp(basePersuasion+f.jitter(), 0.25, 0.95)
	v.EngagementScore = clamp(baseEngagement+f.jitter(), 0.25, 0.95)
	return v
}

func (f *Fallback) jitter() float64 {
	if f.amplitude == 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return (f.rng.Float64()*2 - 1) * f.amplitude
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
