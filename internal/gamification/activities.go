package gamification

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/store"
)

// RestDay protects today's streak once per ISO week, on a day with no
// completions.
func (s *Service) RestDay(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	week, today := WeekID(sess.now), DayID(sess.now)
	if sess.state.RestWeek.ClaimedFor(week) {
		return nil, fmt.Errorf("rest day %s: %w", week, ErrAlreadyClaimed)
	}
	act, err := s.activity(ctx, sess)
	if err != nil {
		return nil, err
	}
	if act.Today > 0 {
		return nil, fmt.Errorf("%d completions today: %w", act.Today, ErrNotEligible)
	}
	w := s.store.writer(sess.h, "rest day")
	if err := w.guard(ctx, store.FieldRestWeek, week); err != nil {
		return nil, err
	}
	if err := w.set(ctx, store.FieldStreakProtect, today); err != nil {
		return nil, err
	}
	log.Printf("[gamification] %s rests on %s", playerID, today)
	return &models.ClaimResponse{Claim: "rest", Period: week, Wallet: sess.state.Gold}, nil
}

// ── Focus session ───────────────────────────────────────

func (s *Service) StartFocus(ctx context.Context, playerID string) (*models.SessionResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if sess.state.FocusStart != nil {
		return nil, fmt.Errorf("focus already running since %s: %w", sess.state.FocusStart.Format(time.RFC3339), ErrSessionState)
	}
	start := sess.now
	if err := s.store.writer(sess.h, "start focus").set(ctx, store.FieldFocusStart, store.EncodeTime(&start)); err != nil {
		return nil, err
	}
	return &models.SessionResponse{Activity: "focus", Started: &start, Wallet: sess.state.Gold}, nil
}

// EndFocus clears the running session and appends "{date}:{minutes}" to
// the focus log, dropping the oldest entries past the log cap.
func (s *Service) EndFocus(ctx context.Context, playerID string) (*models.SessionResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	start := sess.state.FocusStart
	if start == nil {
		return nil, fmt.Errorf("no focus session running: %w", ErrSessionState)
	}
	minutes := max(0, int(sess.now.Sub(*start).Minutes()))

	w := s.store.writer(sess.h, "end focus")
	if err := w.set(ctx, store.FieldFocusStart, ""); err != nil {
		return nil, err
	}
	entry := fmt.Sprintf("%s:%d", DayID(sess.now), minutes)
	logText := AppendFocusLog(sess.state.FocusLog, entry, s.cat.Prices.FocusLogCap)
	if err := w.set(ctx, store.FieldFocusLog, logText); err != nil {
		return nil, err
	}
	return &models.SessionResponse{Activity: "focus", Started: start, Minutes: minutes, Wallet: sess.state.Gold}, nil
}

// AppendFocusLog adds entry to a comma-separated log, keeping the newest
// entries within limit characters.
func AppendFocusLog(current, entry string, limit int) string {
	var parts []string
	if current != "" {
		parts = strings.Split(current, ",")
	}
	parts = append(parts, entry)
	out := strings.Join(parts, ",")
	for limit > 0 && len(out) > limit && len(parts) > 1 {
		parts = parts[1:]
		out = strings.Join(parts, ",")
	}
	return out
}

// ── Companion outing ────────────────────────────────────

func (s *Service) StartOuting(ctx context.Context, playerID string) (*models.SessionResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if sess.state.OutingStart != nil {
		return nil, fmt.Errorf("companion already out: %w", ErrSessionState)
	}
	if sess.state.EquippedPet == "" {
		return nil, fmt.Errorf("no companion equipped: %w", ErrNotEligible)
	}
	start := sess.now
	if err := s.store.writer(sess.h, "start outing").set(ctx, store.FieldOutingStart, store.EncodeTime(&start)); err != nil {
		return nil, err
	}
	return &models.SessionResponse{Activity: "outing", Started: &start, Wallet: sess.state.Gold}, nil
}

// OutingReward is floor(hours away * perHour), capped at limit.
func OutingReward(away time.Duration, perHour, limit int) int {
	return min(limit, max(0, int(away.Hours()*float64(perHour))))
}

// EndOuting clears the start field before paying so a retry cannot pay
// twice.
func (s *Service) EndOuting(ctx context.Context, playerID string) (*models.SessionResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	start := sess.state.OutingStart
	if start == nil {
		return nil, fmt.Errorf("companion is home: %w", ErrSessionState)
	}
	away := sess.now.Sub(*start)
	gold := OutingReward(away, s.cat.Prices.OutingPerHour, s.cat.Prices.OutingCap)

	w := s.store.writer(sess.h, "end outing")
	if err := w.guard(ctx, store.FieldOutingStart, ""); err != nil {
		return nil, err
	}
	wallet := sess.state.Gold + gold
	if gold > 0 {
		if err := w.setInt(ctx, store.FieldGold, wallet); err != nil {
			return nil, err
		}
	}
	log.Printf("[gamification] %s companion back after %s: +%dG", playerID, away.Round(time.Minute), gold)
	return &models.SessionResponse{Activity: "outing", Started: start, Minutes: int(away.Minutes()), Gold: gold, Wallet: wallet}, nil
}
