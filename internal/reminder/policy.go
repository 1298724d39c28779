// Package reminder decides when each active task nags next and runs the
// self re-arming reminder loop.
package reminder

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sandeepkv93/nagd/internal/model"
)

const (
	MinIntervalMinutes = 5.0
	MaxIntervalMinutes = 1440.0
)

// Jitter is the half-open range a delay factor is drawn from.
type Jitter struct {
	Min, Max float64
}

var (
	FirstJitter     = Jitter{Min: 0.2, Max: 1.0}
	RecurringJitter = Jitter{Min: 0.7, Max: 1.0}
)

// BaseMinutes interpolates linearly from MaxIntervalMinutes at intensity 0
// down to MinIntervalMinutes at intensity 100.
func BaseMinutes(intensity int) float64 {
	normalized := float64(model.ClampIntensity(intensity)) / 100
	return MaxIntervalMinutes - (MaxIntervalMinutes-MinIntervalMinutes)*normalized
}

// Delay applies factor to the base interval, clamps to the minimum interval
// and rounds to a whole minute.
func Delay(intensity int, factor float64) time.Duration {
	minutes := BaseMinutes(intensity) * factor
	if minutes < MinIntervalMinutes {
		minutes = MinIntervalMinutes
	}
	return time.Duration(math.Round(minutes)) * time.Minute
}

// DelayPolicy draws jittered delays. It is safe for concurrent use.
type DelayPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDelayPolicy uses src for jitter draws; a nil src seeds from the
// runtime's random source.
func NewDelayPolicy(src rand.Source) *DelayPolicy {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &DelayPolicy{rng: rand.New(src)}
}

func (p *DelayPolicy) FirstDelay(intensity int) time.Duration {
	return Delay(intensity, p.factor(FirstJitter))
}

func (p *DelayPolicy) RecurringDelay(intensity int) time.Duration {
	return Delay(intensity, p.factor(RecurringJitter))
}

func (p *DelayPolicy) factor(j Jitter) float64 {
	p.mu.Lock()
	f := p.rng.Float64()
	p.mu.Unlock()
	return j.Min + (j.Max-j.Min)*f
}
