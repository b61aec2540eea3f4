package gamification

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/gacha"
	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/store"
)

// ── Gacha ───────────────────────────────────────────────

const (
	DrawSingle       = "single"
	DrawTen          = "ten"
	DrawWeeklyTicket = "weekly-ticket"
	DrawMonthlySR    = "monthly-sr"
	DrawTicket       = "ticket"
)

func (s *Service) debit(ctx context.Context, w *writer, sess *session, cost int) error {
	if cost <= 0 {
		return nil
	}
	if sess.state.Gold < cost {
		return fmt.Errorf("need %dG, have %dG: %w", cost, sess.state.Gold, ErrInsufficientGold)
	}
	if err := w.setInt(ctx, store.FieldGold, sess.state.Gold-cost); err != nil {
		return err
	}
	sess.state.Gold -= cost
	return nil
}

// Draw runs one of the draw modes. Payment (gold, ticket or period guard)
// is written before any monster is granted, and every read happens before
// the payment.
func (s *Service) Draw(ctx context.Context, playerID, mode string) (*models.DrawResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	inv, err := s.store.Inventory(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st := sess.state
	p := s.cat.Prices
	w := s.store.writer(sess.h, "draw "+mode)

	var (
		cost     int
		monsters []catalog.Monster
	)
	switch mode {
	case DrawSingle:
		today := DayID(sess.now)
		if !st.FreeGacha.ClaimedFor(today) {
			if err := w.guard(ctx, store.FieldFreeGacha, today); err != nil {
				return nil, err
			}
		} else {
			cost = p.SingleDraw
			if err := s.debit(ctx, w, sess, cost); err != nil {
				return nil, err
			}
		}
		monsters = []catalog.Monster{s.gacha.DrawStandard()}

	case DrawTen:
		cost = p.TenDraw
		if err := s.debit(ctx, w, sess, cost); err != nil {
			return nil, err
		}
		monsters = s.gacha.DrawBatch(s.cat.BatchSize)

	case DrawWeeklyTicket:
		week := WeekID(sess.now)
		if st.WeeklyTicket.ClaimedFor(week) {
			return nil, fmt.Errorf("weekly ticket %s: %w", week, ErrAlreadyClaimed)
		}
		cost = p.WeeklyTicket
		if st.Gold < cost {
			return nil, fmt.Errorf("need %dG, have %dG: %w", cost, st.Gold, ErrInsufficientGold)
		}
		if err := w.guard(ctx, store.FieldWeeklyTicket, week); err != nil {
			return nil, err
		}
		if err := s.debit(ctx, w, sess, cost); err != nil {
			return nil, err
		}
		monsters = s.gacha.DrawBatch(s.cat.BatchSize)

	case DrawMonthlySR:
		month := MonthID(sess.now)
		if st.MonthlySRTicket.ClaimedFor(month) {
			return nil, fmt.Errorf("monthly SR ticket %s: %w", month, ErrAlreadyClaimed)
		}
		cost = p.MonthlySR
		if st.Gold < cost {
			return nil, fmt.Errorf("need %dG, have %dG: %w", cost, st.Gold, ErrInsufficientGold)
		}
		if err := w.guard(ctx, store.FieldMonthlySRTicket, month); err != nil {
			return nil, err
		}
		if err := s.debit(ctx, w, sess, cost); err != nil {
			return nil, err
		}
		monsters = []catalog.Monster{s.gacha.DrawGuaranteed()}

	case DrawTicket:
		if st.GachaTickets <= 0 {
			return nil, fmt.Errorf("no draw tickets: %w", ErrNotEligible)
		}
		if err := w.setInt(ctx, store.FieldGachaTickets, st.GachaTickets-1); err != nil {
			return nil, err
		}
		sess.state.GachaTickets--
		monsters = []catalog.Monster{s.gacha.DrawStandard()}

	default:
		return nil, fmt.Errorf("%w: draw mode %q", ErrUnknownItem, mode)
	}

	return s.grant(ctx, w, sess, gacha.NewCollection(inv), mode, cost, monsters)
}

// grant resolves drawn monsters against the collection loaded before
// payment, writes the changed rows and history, and credits duplicate
// currency last.
func (s *Service) grant(ctx context.Context, w *writer, sess *session, coll gacha.Collection, mode string, cost int, monsters []catalog.Monster) (*models.DrawResponse, error) {
	resp := &models.DrawResponse{Mode: mode, Cost: cost, Results: make([]models.DrawResult, 0, len(monsters))}
	for _, m := range monsters {
		res := s.gacha.Apply(coll, sess.h.PlayerID, m, sess.now)
		if res.Changed() {
			if err := w.monster(ctx, res.Owned); err != nil {
				return nil, err
			}
		}
		if err := w.history(ctx, models.HistoryDraw, m.Key, string(m.Rarity), res.Currency, string(res.Outcome), sess.now); err != nil {
			return nil, err
		}
		resp.CurrencyGained += res.Currency
		resp.Results = append(resp.Results, models.DrawResult{
			MonsterKey: m.Key,
			Name:       m.Name,
			Rarity:     string(m.Rarity),
			Outcome:    string(res.Outcome),
			Level:      res.Level,
			Currency:   res.Currency,
		})
	}
	if resp.CurrencyGained > 0 {
		if err := w.setInt(ctx, store.FieldGold, sess.state.Gold+resp.CurrencyGained); err != nil {
			return nil, err
		}
		sess.state.Gold += resp.CurrencyGained
	}
	resp.Gold = sess.state.Gold
	resp.Tickets = sess.state.GachaTickets
	log.Printf("[gacha] %s %s draw: %d monsters, -%dG +%dG duplicates", sess.h.PlayerID, mode, len(monsters), cost, resp.CurrencyGained)
	return resp, nil
}

// ── Shop ────────────────────────────────────────────────

const (
	ItemStaminaPotion = "stamina_potion"
	ItemBossScroll    = "boss_scroll"
	ItemFloorSkip     = "floor_skip"
	ItemStreakProtect = "streak_protect"
)

// Buy purchases a shop item. Gold is debited before the item takes effect.
func (s *Service) Buy(ctx context.Context, playerID, item string) (*models.PurchaseResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st := sess.state
	p := s.cat.Prices
	w := s.store.writer(sess.h, "buy "+item)
	resp := &models.PurchaseResponse{Item: item}

	switch item {
	case ItemStaminaPotion:
		act, err := s.activity(ctx, sess)
		if err != nil {
			return nil, err
		}
		if act.Today >= p.StaminaCap {
			return nil, fmt.Errorf("already %d completions today: %w", act.Today, ErrNotEligible)
		}
		resp.Cost = p.StaminaPotion
		if err := s.debit(ctx, w, sess, resp.Cost); err != nil {
			return nil, err
		}
		if err := w.history(ctx, models.HistoryItem, item, "", 0, "Completed", sess.now); err != nil {
			return nil, err
		}
		resp.Detail = "counts as one completion today"

	case ItemBossScroll:
		resp.Cost = p.BossScroll
		if err := s.debit(ctx, w, sess, resp.Cost); err != nil {
			return nil, err
		}
		damage := st.WeeklyBossDamage + p.BossScrollDmg
		if err := w.setInt(ctx, store.FieldWeeklyBossDamage, damage); err != nil {
			return nil, err
		}
		resp.Detail = "boss damage " + strconv.Itoa(damage)

	case ItemFloorSkip:
		if st.DungeonFloor >= s.cat.MaxFloor {
			return nil, fmt.Errorf("already on floor %d: %w", st.DungeonFloor, ErrNotEligible)
		}
		resp.Cost = p.FloorSkip
		if err := s.debit(ctx, w, sess, resp.Cost); err != nil {
			return nil, err
		}
		floor := AdvanceFloor(st.DungeonFloor, p.FloorSkipCount, s.cat.MaxFloor)
		if err := w.setInt(ctx, store.FieldDungeonFloor, floor); err != nil {
			return nil, err
		}
		resp.Detail = fmt.Sprintf("floor %d -> %d", st.DungeonFloor, floor)

	case ItemStreakProtect:
		today := DayID(sess.now)
		if st.StreakProtectDate == today {
			return nil, fmt.Errorf("streak already protected for %s: %w", today, ErrAlreadyClaimed)
		}
		resp.Cost = p.StreakProtect
		if err := s.debit(ctx, w, sess, resp.Cost); err != nil {
			return nil, err
		}
		if err := w.set(ctx, store.FieldStreakProtect, today); err != nil {
			return nil, err
		}
		resp.Detail = "streak protected for " + today

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, item)
	}

	resp.Gold = sess.state.Gold
	log.Printf("[gamification] %s bought %s for %dG", playerID, item, resp.Cost)
	return resp, nil
}

// ChangeJob switches the job class for a fee. Choosing the current job is
// a free no-op.
func (s *Service) ChangeJob(ctx context.Context, playerID, jobKey string) (*models.PurchaseResponse, error) {
	job, ok := s.cat.Job(jobKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, jobKey)
	}
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	resp := &models.PurchaseResponse{Item: "job:" + job.Key, Detail: job.Name}
	if sess.state.JobClass == job.Key {
		resp.Gold = sess.state.Gold
		return resp, nil
	}
	w := s.store.writer(sess.h, "change job")
	resp.Cost = s.cat.Prices.JobChange
	if err := s.debit(ctx, w, sess, resp.Cost); err != nil {
		return nil, err
	}
	if err := w.set(ctx, store.FieldJobClass, job.Key); err != nil {
		return nil, err
	}
	resp.Gold = sess.state.Gold
	log.Printf("[gamification] %s changed job %q -> %q", playerID, sess.state.JobClass, job.Key)
	return resp, nil
}

// EquipPet sets the companion. An empty key unequips.
func (s *Service) EquipPet(ctx context.Context, playerID, monsterKey string) (*models.PlayerState, error) {
	if monsterKey != "" {
		if _, ok := s.cat.Monster(monsterKey); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMonster, monsterKey)
		}
	}
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if monsterKey != "" {
		inv, err := s.store.Inventory(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if s.companion(inv, monsterKey) == nil {
			return nil, fmt.Errorf("%w: %q", ErrNotOwned, monsterKey)
		}
	}
	if err := s.store.writer(sess.h, "equip pet").set(ctx, store.FieldEquippedPet, monsterKey); err != nil {
		return nil, err
	}
	sess.state.EquippedPet = monsterKey
	return &sess.state, nil
}
