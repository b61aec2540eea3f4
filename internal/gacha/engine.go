// Package gacha issues random collectible monsters from weighted rarity
// tables and resolves each draw against the player's collection.
package gacha

import (
	"time"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/random"
)

// Engine draws monsters. It holds no player state.
type Engine struct {
	cat *catalog.Catalog
	rng random.Source
}

// NewEngine builds an engine over cat. A nil rng uses random.Default.
func NewEngine(cat *catalog.Catalog, rng random.Source) *Engine {
	if rng == nil {
		rng = random.Default()
	}
	return &Engine{cat: cat, rng: rng}
}

// DrawStandard rolls the standard table (N/R/SR/SSR/UR).
func (e *Engine) DrawStandard() catalog.Monster {
	return e.draw(e.cat.StandardDraw)
}

// DrawGuaranteed rolls the SR-or-better table.
func (e *Engine) DrawGuaranteed() catalog.Monster {
	return e.draw(e.cat.GuaranteedDraw)
}

// DrawBatch performs n independent standard draws. There is no pity.
func (e *Engine) DrawBatch(n int) []catalog.Monster {
	out := make([]catalog.Monster, 0, n)
	for range n {
		out = append(out, e.DrawStandard())
	}
	return out
}

func (e *Engine) draw(table catalog.DrawTable) catalog.Monster {
	weights := make([]int, len(table.Tiers))
	for i, tier := range table.Tiers {
		weights[i] = tier.Weight
	}
	var pool []catalog.Monster
	if i := random.Weighted(e.rng, weights); i >= 0 {
		pool = e.cat.MonstersOf(table.Tiers[i].Rarity)
	}
	// An empty tier falls back to every monster the table can issue.
	if len(pool) == 0 {
		for _, r := range table.Rarities() {
			pool = append(pool, e.cat.MonstersOf(r)...)
		}
	}
	if len(pool) == 0 {
		pool = e.cat.Monsters
	}
	return pool[random.IntN(e.rng, len(pool))]
}

// ── Duplicate resolution ──────────────────────────────────

type Outcome string

const (
	OutcomeNew       Outcome = "new"
	OutcomeLevelUp   Outcome = "level_up"
	OutcomeConverted Outcome = "converted"
)

// Result describes what one draw did to the collection.
type Result struct {
	Monster  catalog.Monster     `json:"monster"`
	Outcome  Outcome             `json:"outcome"`
	Level    int                 `json:"level"`
	Currency int                 `json:"currency"`
	Owned    models.OwnedMonster `json:"-"`
}

// Changed reports whether the inventory row must be written.
func (r Result) Changed() bool { return r.Outcome != OutcomeConverted }

// Resolve applies a drawn monster to the player's current copy of it (nil
// when unowned). Below maxLevel a duplicate levels up; at maxLevel it
// converts to the rarity's currency rate and the copy is left untouched.
func Resolve(owned *models.OwnedMonster, playerID string, m catalog.Monster, maxLevel int, rates map[catalog.Rarity]int, now time.Time) Result {
	if owned == nil {
		om := models.OwnedMonster{
			PlayerID:   playerID,
			MonsterKey: m.Key,
			Rarity:     string(m.Rarity),
			Level:      1,
			AcquiredAt: now,
		}
		return Result{Monster: m, Outcome: OutcomeNew, Level: 1, Owned: om}
	}
	if owned.Level < maxLevel {
		om := *owned
		om.Level++
		return Result{Monster: m, Outcome: OutcomeLevelUp, Level: om.Level, Owned: om}
	}
	return Result{Monster: m, Outcome: OutcomeConverted, Level: owned.Level, Currency: rates[m.Rarity], Owned: *owned}
}

// Collection is a player's inventory keyed by monster key.
type Collection map[string]models.OwnedMonster

func NewCollection(inv []models.OwnedMonster) Collection {
	c := make(Collection, len(inv))
	for _, om := range inv {
		c[om.MonsterKey] = om
	}
	return c
}

// Apply resolves m against c and records the new copy in c, so several
// draws in one batch see each other's level-ups.
func (e *Engine) Apply(c Collection, playerID string, m catalog.Monster, now time.Time) Result {
	var owned *models.OwnedMonster
	if om, ok := c[m.Key]; ok {
		owned = &om
	}
	res := Resolve(owned, playerID, m, e.cat.MaxMonsterLevel, e.cat.DuplicateCurrency, now)
	if res.Changed() {
		c[m.Key] = res.Owned
	}
	return res
}

// CountRarity returns how many distinct monsters of rarity r the
// collection holds.
func (c Collection) CountRarity(r catalog.Rarity) int {
	n := 0
	for _, om := range c {
		if om.Rarity == string(r) {
			n++
		}
	}
	return n
}
