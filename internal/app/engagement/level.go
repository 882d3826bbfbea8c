package engagement

import (
	"math"

	"github.com/lifeio/lifeio/internal/domain"
)

// ComputeXP converts a duration into experience points.
// One minute is worth one base XP, scaled by the category multiplier.
// The result is never rounded; rounding happens only at presentation.
func ComputeXP(durationMinutes, multiplier float64) float64 {
	return durationMinutes * multiplier
}

// LevelForXP returns the level for a cumulative XP total.
// Flat curve: every level spans XPPerLevel points. Negative totals are level 0.
func LevelForXP(totalXP float64) int {
	if totalXP < 0 {
		return 0
	}
	return int(math.Floor(totalXP / domain.XPPerLevel))
}

// LevelProgress derives the level state from a cumulative XP total.
//
// XPCurrent is the truncating remainder (math.Mod): a negative total keeps
// its sign, so a user who is in debt sees negative progress on level 0
// instead of a wrapped-around value. TotalXP is never clamped.
func LevelProgress(totalXP float64) domain.LevelProgress {
	return domain.LevelProgress{
		Level:     LevelForXP(totalXP),
		XPCurrent: math.Mod(totalXP, domain.XPPerLevel),
		XPNeeded:  domain.XPPerLevel,
		TotalXP:   totalXP,
	}
}

// Round2 rounds to two decimal places for responses.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
