package gamification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lifequest/backend/internal/catalog"
	"github.com/lifequest/backend/internal/gacha"
	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/random"
	"github.com/lifequest/backend/internal/store"
)

type Service struct {
	store   *Store
	cat     *catalog.Catalog
	rewards *RewardCalculator
	gacha   *gacha.Engine
	now     func() time.Time
	loc     *time.Location

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Option func(*options)

type options struct {
	rng random.Source
	now func() time.Time
	loc *time.Location
}

// WithRandom pins the source used by the bonus stack and the loot draws.
func WithRandom(src random.Source) Option { return func(o *options) { o.rng = src } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithLocation sets the zone in which days, weeks and months roll over.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

func NewService(db store.Adapter, cat *catalog.Catalog, opts ...Option) *Service {
	o := options{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = random.Default()
	}
	return &Service{
		store:   NewStore(db),
		cat:     cat,
		rewards: NewRewardCalculator(cat, o.rng),
		gacha:   gacha.NewEngine(cat, o.rng),
		now:     o.now,
		loc:     o.loc,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Catalog exposes the static tables the service runs on.
func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// lock serializes requests for one player.
func (s *Service) lock(playerID string) func() {
	s.mu.Lock()
	l, ok := s.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playerID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// ── Session ─────────────────────────────────────────────

// session is one request's snapshot of a player.
type session struct {
	state models.PlayerState
	h     store.RowHandle
	now   time.Time
}

// begin loads the player and zeroes boss damage left over from another
// ISO week before anything reads it.
func (s *Service) begin(ctx context.Context, playerID string) (*session, error) {
	st, h, err := s.store.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	sess := &session{state: st, h: h, now: s.now().In(s.loc)}

	week := WeekID(sess.now)
	if NeedsWeekReset(st, week) {
		w := s.store.writer(h, "boss week rollover")
		if err := w.setInt(ctx, store.FieldWeeklyBossDamage, 0); err != nil {
			return nil, err
		}
		if err := w.set(ctx, store.FieldBossWeek, week); err != nil {
			return nil, err
		}
		if st.BossWeek != "" {
			log.Printf("[gamification] %s: boss damage reset for %s (was %d in %s)", playerID, week, st.WeeklyBossDamage, st.BossWeek)
		}
		sess.state.WeeklyBossDamage = 0
		sess.state.BossWeek = week
	}
	return sess, nil
}

func (s *Service) activity(ctx context.Context, sess *session) (Activity, error) {
	recs, err := s.store.Completions(ctx, sess.h.PlayerID)
	if err != nil {
		return Activity{}, err
	}
	return Summarize(recs, sess.now), nil
}

// companion resolves the equipped pet. A pet that is no longer owned or
// no longer in the catalog grants nothing.
func (s *Service) companion(inv []models.OwnedMonster, key string) *Companion {
	if key == "" {
		return nil
	}
	m, ok := s.cat.Monster(key)
	if !ok {
		return nil
	}
	for _, om := range inv {
		if om.MonsterKey == key {
			return &Companion{Monster: m, Level: om.Level}
		}
	}
	return nil
}

func (s *Service) metrics(st models.PlayerState, a Activity, inv []models.OwnedMonster, streak int) Metrics {
	return Metrics{
		Tasks:      a.Total,
		Floor:      st.DungeonFloor,
		Rebirths:   st.RebirthCount,
		Level:      st.Level,
		Streak:     streak,
		URsOwned:   gacha.NewCollection(inv).CountRarity(catalog.RarityUR),
		MonthTasks: a.Month,
	}
}

// syncTitles records titles whose thresholds are met. Titles never lock
// again once recorded.
func (s *Service) syncTitles(ctx context.Context, sess *session, m Metrics) error {
	fresh := NewTitles(s.cat, m, sess.state.UnlockedTitles)
	if len(fresh) == 0 {
		return nil
	}
	ids := make([]string, len(fresh))
	for i, t := range fresh {
		ids[i] = t.ID
	}
	next := sess.state.UnlockedTitles.With(ids...)
	if err := s.store.writer(sess.h, "unlock titles").set(ctx, store.FieldUnlockedTitles, next.String()); err != nil {
		return err
	}
	sess.state.UnlockedTitles = next
	log.Printf("[gamification] %s unlocked titles %v", sess.h.PlayerID, ids)
	return nil
}

// ── Task Completion ─────────────────────────────────────

// CompleteTask runs the reward pipeline for one completion and commits the
// result. It is not idempotent: every call appends history and advances
// the floor.
func (s *Service) CompleteTask(ctx context.Context, playerID, taskKey string) (*models.TaskCompleteResponse, error) {
	task, ok := s.cat.Task(taskKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, taskKey)
	}

	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	act, err := s.activity(ctx, sess)
	if err != nil {
		return nil, err
	}
	inv, err := s.store.Inventory(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st := sess.state
	pet := s.companion(inv, st.EquippedPet)

	payout := s.rewards.Calculate(RewardInput{
		Task:       task,
		Player:     st,
		Companion:  pet,
		TodayCount: act.Today,
		Now:        sess.now,
	})
	chest := 1.0
	if pet != nil && pet.Monster.Skill == catalog.SkillChestUp {
		chest = pet.Monster.Value
	}
	event := s.rewards.RollFloorEvent(chest)
	surprise := s.rewards.RollSurprise()

	var surpriseGold, surpriseXP, surpriseTickets int
	if surprise != nil {
		switch surprise.Kind {
		case catalog.SurpriseGold:
			surpriseGold = surprise.Amount
		case catalog.SurpriseXP:
			surpriseXP = surprise.Amount
		case catalog.SurpriseTicket:
			surpriseTickets = surprise.Amount
		}
	}

	gold := ApplyGold(st.Gold, payout.Gold, event.Gold, surpriseGold)
	before := levelState(st)
	after := ApplyXP(before, payout.XP+surpriseXP)
	floor := AdvanceFloor(st.DungeonFloor, 1, s.cat.MaxFloor)
	damage := st.WeeklyBossDamage + payout.BossDamage

	w := s.store.writer(sess.h, "complete task")
	if err := w.setInt(ctx, store.FieldGold, gold); err != nil {
		return nil, err
	}
	if err := w.level(ctx, before, after); err != nil {
		return nil, err
	}
	if floor != st.DungeonFloor {
		if err := w.setInt(ctx, store.FieldDungeonFloor, floor); err != nil {
			return nil, err
		}
	}
	if err := w.setInt(ctx, store.FieldWeeklyBossDamage, damage); err != nil {
		return nil, err
	}
	if surpriseTickets > 0 {
		if err := w.setInt(ctx, store.FieldGachaTickets, st.GachaTickets+surpriseTickets); err != nil {
			return nil, err
		}
	}
	if err := w.history(ctx, models.HistoryTask, task.Key, string(task.Category), payout.Gold, "Completed", sess.now); err != nil {
		return nil, err
	}

	sess.state.Gold = gold
	sess.state.Level, sess.state.CurrentXP, sess.state.NextLevelXP = after.Level, after.CurrentXP, after.NextLevelXP
	sess.state.DungeonFloor = floor
	sess.state.WeeklyBossDamage = damage

	log.Printf("[gamification] %s completed %s: +%dG +%dXP event=%s(%d) floor %d->%d",
		playerID, task.Key, payout.Gold, payout.XP, event.Kind, event.Gold, st.DungeonFloor, floor)

	act.Total++
	act.Today++
	act.Week++
	act.Month++
	act.ByDay[DayID(sess.now)]++
	m := s.metrics(sess.state, act, inv, Streak(act, sess.now, sess.state.StreakProtectDate))
	if err := s.syncTitles(ctx, sess, m); err != nil {
		return nil, err
	}

	return &models.TaskCompleteResponse{
		Task:       task.Key,
		Category:   string(task.Category),
		Payout:     payout,
		FloorEvent: event,
		Surprise:   surprise,
		GoldDelta:  gold - st.Gold,
		Gold:       gold,
		Level: models.LevelChange{
			Before:      before.Level,
			After:       after.Level,
			CurrentXP:   after.CurrentXP,
			NextLevelXP: after.NextLevelXP,
		},
		Floor:            floor,
		RebirthAvailable: CanRebirth(sess.state, s.cat),
		Boss:             BossStatusAt(s.cat, sess.state, sess.now),
		CompletionsToday: act.Today,
	}, nil
}

// ── Rebirth ─────────────────────────────────────────────

// Rebirth resets the dungeon to floor 1 and raises the permanent bonus.
// Only allowed from the deepest floor.
func (s *Service) Rebirth(ctx context.Context, playerID string) (*models.RebirthResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !CanRebirth(sess.state, s.cat) {
		return nil, fmt.Errorf("%w: floor %d of %d", ErrRebirthLocked, sess.state.DungeonFloor, s.cat.MaxFloor)
	}
	count, title := Rebirth(sess.state, s.cat)

	w := s.store.writer(sess.h, "rebirth")
	if err := w.setInt(ctx, store.FieldRebirthCount, count); err != nil {
		return nil, err
	}
	if err := w.setInt(ctx, store.FieldDungeonFloor, 1); err != nil {
		return nil, err
	}
	if err := w.set(ctx, store.FieldTitle, title); err != nil {
		return nil, err
	}
	log.Printf("[gamification] %s reborn (%d): %s", playerID, count, title)
	return &models.RebirthResponse{RebirthCount: count, Title: title, Floor: 1}, nil
}

// ── Read Model ──────────────────────────────────────────

// State aggregates everything a client needs to render the player. It
// persists the boss-week reset and newly earned titles.
func (s *Service) State(ctx context.Context, playerID string) (*models.StateResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	act, err := s.activity(ctx, sess)
	if err != nil {
		return nil, err
	}
	inv, err := s.store.Inventory(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st := sess.state
	streak := Streak(act, sess.now, st.StreakProtectDate)
	m := s.metrics(st, act, inv, streak)
	if err := s.syncTitles(ctx, sess, m); err != nil {
		return nil, err
	}
	st = sess.state

	today, week := DayID(sess.now), WeekID(sess.now)

	pending := []models.AchievementStatus{}
	for _, a := range PendingAchievements(s.cat, m, st.Achievements) {
		pending = append(pending, models.AchievementStatus{ID: a.ID, Name: a.Name, Description: a.Description, Reward: a.Reward})
	}
	titles := []string{}
	for _, t := range s.cat.Titles {
		if st.UnlockedTitles.Has(t.ID) {
			titles = append(titles, t.Name)
		}
	}
	if inv == nil {
		inv = []models.OwnedMonster{}
	}

	return &models.StateResponse{
		Player:              st,
		Streak:              streak,
		CompletionsToday:    act.Today,
		CompletionsWeek:     act.Week,
		CompletionsMonth:    act.Month,
		TodayWeakness:       string(s.rewards.TodayWeakness(sess.now)),
		Boss:                BossStatusAt(s.cat, st, sess.now),
		DailyQuest:          questStatus("daily", s.cat.DailyQuest, act.Today, st.DailyClaim.ClaimedFor(today)),
		WeeklyQuest:         questStatus("weekly", s.cat.WeeklyQuest, act.Week, st.WeeklyClaim.ClaimedFor(week)),
		Seasonal:            SeasonalStatus(s.cat, act, st, sess.now),
		Missions:            Missions(s.cat, act, st.ClaimedMissions, sess.now),
		PendingAchievements: pending,
		Titles:              titles,
		LoginBonus:          LoginBonus(s.cat, LoginStreak(st.LoginStreak, string(st.LastLogin), sess.now)),
		LoginClaimed:        st.LastLogin.ClaimedFor(today),
		RebirthAvailable:    CanRebirth(st, s.cat),
		FreeDrawAvailable:   !st.FreeGacha.ClaimedFor(today),
		RestDayAvailable:    !st.RestWeek.ClaimedFor(week) && act.Today == 0,
		Inventory:           inv,
	}, nil
}

// History lists records newest last. kind may be empty for all kinds.
func (s *Service) History(ctx context.Context, playerID, kind string, since time.Time, limit int) (*models.HistoryResponse, error) {
	f := store.HistoryFilter{PlayerID: playerID, Since: since, Limit: limit}
	if kind != "" {
		f.Kinds = []string{kind}
	}
	recs, err := s.store.History(ctx, f)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []models.HistoryRecord{}
	}
	return &models.HistoryResponse{Records: recs}, nil
}
