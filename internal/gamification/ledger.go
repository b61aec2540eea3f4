package gamification

import (
	"math"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/models"
)

// NextLevelXP returns the XP needed to clear level: floor(level^1.5 * 100).
func NextLevelXP(level int) int {
	return int(math.Pow(float64(max(1, level)), 1.5) * 100)
}

// LevelState is the XP track of a player.
type LevelState struct {
	Level       int
	CurrentXP   int
	NextLevelXP int
}

// ApplyXP adds gain to the track. Overflow carries into the next level and
// keeps levelling while it still clears the new threshold.
func ApplyXP(s LevelState, gain int) LevelState {
	if s.NextLevelXP <= 0 {
		s.NextLevelXP = NextLevelXP(s.Level)
	}
	s.CurrentXP = max(0, s.CurrentXP+gain)
	for s.CurrentXP >= s.NextLevelXP {
		s.CurrentXP -= s.NextLevelXP
		s.Level++
		s.NextLevelXP = NextLevelXP(s.Level)
	}
	return s
}

// ApplyGold adds every gold delta of a completion and floors the wallet at 0.
func ApplyGold(gold int, deltas ...int) int {
	for _, d := range deltas {
		gold += d
	}
	return max(0, gold)
}

// AdvanceFloor moves n floors down the dungeon, stopping at maxFloor.
func AdvanceFloor(floor, n, maxFloor int) int {
	return min(maxFloor, max(1, floor+n))
}

// CanRebirth reports whether the player stands on the deepest floor.
func CanRebirth(s models.PlayerState, cat *catalog.Catalog) bool {
	return s.DungeonFloor >= cat.MaxFloor
}

// Rebirth returns the next rebirth count and its title. The floor always
// resets to 1.
func Rebirth(s models.PlayerState, cat *catalog.Catalog) (count int, title string) {
	count = s.RebirthCount + 1
	return count, cat.RebirthTitle(count)
}

func levelState(s models.PlayerState) LevelState {
	return LevelState{Level: s.Level, CurrentXP: s.CurrentXP, NextLevelXP: s.NextLevelXP}
}
