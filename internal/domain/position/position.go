// Package position derives a message's on-screen placement from its
// creation timestamp alone.
//
// The placement function is pure: any client, joining at any time, computes
// the same coordinates for the same message at the same instant without
// consulting any other client. The only synchronization requirement between
// clients is a loosely NTP-synced wall clock. No language RNG is involved;
// the pseudo-random fraction comes from a fixed linear-congruential
// transform so every platform derives the same value from the same seed.
package position

import (
	"hash/fnv"
	"math"
	"time"
)

// Fixed LCG constants (Knuth MMIX). The multiplier/increment pair is part
// of the wire-level contract between clients and must never change while
// messages are in flight.
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// Layout describes the viewing surface in percentage coordinates.
type Layout struct {
	// Lanes is the number of parallel horizontal tracks.
	Lanes int

	// TopMarginPct and BandPct bound the vertical region lanes occupy.
	TopMarginPct float64
	BandPct      float64

	// StartLeftPct and EndLeftPct are the horizontal entry and exit
	// positions; traversal interpolates between them.
	StartLeftPct float64
	EndLeftPct   float64

	// EaseExponent shapes the ease-out curve applied to progress.
	EaseExponent float64
}

// DefaultLayout returns the standard surface geometry.
func DefaultLayout() Layout {
	return Layout{
		Lanes:        8,
		TopMarginPct: 10,
		BandPct:      80,
		StartLeftPct: 105,
		EndLeftPct:   -15,
		EaseExponent: 2.5,
	}
}

// Placement is a message's derived location at a given instant.
type Placement struct {
	Lane     int     `json:"lane"`
	Top      float64 `json:"top"`
	Left     float64 `json:"left"`
	Progress float64 `json:"progress"`
	Expired  bool    `json:"expired"`
}

// At computes the placement of a message created at createdAt in channelID,
// with the traversal duration fixed at its spawn, as seen at now.
//
// The vertical coordinate is seeded from the creation second and the
// channel, so it is stable across clients regardless of delivery order.
// Horizontal progress is a pure function of elapsed time; a createdAt in
// the future (clock skew between clients) clamps progress to zero rather
// than producing a negative position.
func At(createdAt time.Time, channelID string, traversal time.Duration, now time.Time, l Layout) Placement {
	seed := uint64(createdAt.Unix()) ^ channelSeed(channelID)

	f1, seed := nextFraction(seed)
	f2, _ := nextFraction(seed)

	laneIdx := int(f1 * float64(l.Lanes))
	if laneIdx >= l.Lanes {
		laneIdx = l.Lanes - 1
	}

	laneHeight := l.BandPct / float64(l.Lanes)
	// Small deterministic offset within the lane for natural variation;
	// derived from the seed, not random jitter.
	offset := (f2 - 0.5) * laneHeight * 0.4
	top := l.TopMarginPct + float64(laneIdx)*laneHeight + laneHeight/2 + offset

	progress := progressAt(createdAt, traversal, now)
	eased := 1 - math.Pow(1-progress, l.EaseExponent)
	left := l.StartLeftPct + (l.EndLeftPct-l.StartLeftPct)*eased

	return Placement{
		Lane:     laneIdx,
		Top:      top,
		Left:     left,
		Progress: progress,
		Expired:  progress >= 1,
	}
}

// progressAt returns elapsed/traversal clamped to [0, 1].
func progressAt(createdAt time.Time, traversal time.Duration, now time.Time) float64 {
	if traversal <= 0 {
		return 1
	}
	elapsed := now.Sub(createdAt)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= traversal {
		return 1
	}
	return float64(elapsed) / float64(traversal)
}

// channelSeed folds the channel id into a 64-bit value.
func channelSeed(channelID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(channelID))
	return h.Sum64()
}

// nextFraction advances the LCG and maps the top 53 bits of the new state
// to a fraction in [0, 1).
func nextFraction(seed uint64) (float64, uint64) {
	next := seed*lcgMultiplier + lcgIncrement
	return float64(next>>11) / float64(1<<53), next
}
