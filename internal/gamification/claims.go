package gamification

import (
	"context"
	"fmt"
	"log"

	"github.com/lifequest/backend/internal/models"
	"github.com/lifequest/backend/internal/store"
)

// Every claim below writes its guard before the payout. A crash between
// the two loses the reward instead of paying it twice.

// payGuarded commits guard = period, then credits gold.
func (s *Service) payGuarded(ctx context.Context, sess *session, claim string, guard store.Field, period string, gold int) (*models.ClaimResponse, error) {
	w := s.store.writer(sess.h, "claim "+claim)
	if err := w.guard(ctx, guard, period); err != nil {
		return nil, err
	}
	wallet := sess.state.Gold + gold
	if err := w.setInt(ctx, store.FieldGold, wallet); err != nil {
		return nil, err
	}
	sess.state.Gold = wallet
	log.Printf("[gamification] %s claimed %s for %s: +%dG", sess.h.PlayerID, claim, period, gold)
	return &models.ClaimResponse{Claim: claim, Period: period, Gold: gold, Wallet: wallet}, nil
}

// ClaimLogin pays the login bonus for today's position in the login streak.
func (s *Service) ClaimLogin(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st := sess.state
	today := DayID(sess.now)
	if st.LastLogin.ClaimedFor(today) {
		return nil, fmt.Errorf("login %s: %w", today, ErrAlreadyClaimed)
	}
	streak := LoginStreak(st.LoginStreak, string(st.LastLogin), sess.now)
	bonus := LoginBonus(s.cat, streak)

	w := s.store.writer(sess.h, "claim login")
	if err := w.guard(ctx, store.FieldLastLogin, today); err != nil {
		return nil, err
	}
	if err := w.setInt(ctx, store.FieldLoginStreak, streak); err != nil {
		return nil, err
	}
	wallet := st.Gold
	if bonus > 0 {
		wallet += bonus
		if err := w.setInt(ctx, store.FieldGold, wallet); err != nil {
			return nil, err
		}
	}
	log.Printf("[gamification] %s login day %d: +%dG", playerID, streak, bonus)
	return &models.ClaimResponse{Claim: "login", Period: today, Gold: bonus, Streak: streak, Wallet: wallet}, nil
}

// ClaimDaily pays the daily quest once the day's completions reach target.
func (s *Service) ClaimDaily(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	today := DayID(sess.now)
	if sess.state.DailyClaim.ClaimedFor(today) {
		return nil, fmt.Errorf("daily quest %s: %w", today, ErrAlreadyClaimed)
	}
	act, err := s.activity(ctx, sess)
	if err != nil {
		return nil, err
	}
	if act.Today < s.cat.DailyQuest.Target {
		return nil, fmt.Errorf("daily quest %d/%d: %w", act.Today, s.cat.DailyQuest.Target, ErrNotEligible)
	}
	return s.payGuarded(ctx, sess, "daily", store.FieldDailyClaimed, today, s.cat.DailyQuest.Reward)
}

// ClaimWeekly pays the weekly quest for the current ISO week.
func (s *Service) ClaimWeekly(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	week := WeekID(sess.now)
	if sess.state.WeeklyClaim.ClaimedFor(week) {
		return nil, fmt.Errorf("weekly quest %s: %w", week, ErrAlreadyClaimed)
	}
	act, err := s.activity(ctx, sess)
	if err != nil {
		return nil, err
	}
	if act.Week < s.cat.WeeklyQuest.Target {
		return nil, fmt.Errorf("weekly quest %d/%d: %w", act.Week, s.cat.WeeklyQuest.Target, ErrNotEligible)
	}
	return s.payGuarded(ctx, sess, "weekly", store.FieldWeeklyClaimed, week, s.cat.WeeklyQuest.Reward)
}

// ClaimSeasonal pays this month's seasonal mission.
func (s *Service) ClaimSeasonal(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	month := MonthID(sess.now)
	if sess.state.SeasonalClaim.ClaimedFor(month) {
		return nil, fmt.Errorf("seasonal %s: %w", month, ErrAlreadyClaimed)
	}
	act, err := s.activity(ctx, sess)
	if err != nil {
		return nil, err
	}
	status := SeasonalStatus(s.cat, act, sess.state, sess.now)
	if status == nil {
		return nil, fmt.Errorf("no seasonal mission in %s: %w", month, ErrNotEligible)
	}
	if !status.Complete {
		return nil, fmt.Errorf("seasonal %d/%d: %w", status.Progress, status.Target, ErrNotEligible)
	}
	return s.payGuarded(ctx, sess, "seasonal", store.FieldSeasonalClaimed, month, status.Reward)
}

// ClaimBoss pays the weekly boss reward once its HP is exhausted. The XP
// goes through the carry-forward level path.
func (s *Service) ClaimBoss(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st := sess.state
	boss := BossStatusAt(s.cat, st, sess.now)
	if boss.Claimed {
		return nil, fmt.Errorf("boss %s %s: %w", boss.Key, boss.Week, ErrAlreadyClaimed)
	}
	if !boss.Defeated {
		return nil, fmt.Errorf("boss %s has %d HP left: %w", boss.Key, boss.Remaining, ErrNotEligible)
	}

	w := s.store.writer(sess.h, "claim boss")
	if err := w.guard(ctx, store.FieldBossClaimed, boss.Week); err != nil {
		return nil, err
	}
	wallet := st.Gold + boss.RewardGold
	if err := w.setInt(ctx, store.FieldGold, wallet); err != nil {
		return nil, err
	}
	before := levelState(st)
	after := ApplyXP(before, boss.RewardXP)
	if err := w.level(ctx, before, after); err != nil {
		return nil, err
	}
	log.Printf("[gamification] %s defeated %s in %s: +%dG +%dXP", playerID, boss.Key, boss.Week, boss.RewardGold, boss.RewardXP)
	return &models.ClaimResponse{
		Claim:  "boss",
		Period: boss.Week,
		Gold:   boss.RewardGold,
		XP:     boss.RewardXP,
		Level:  &models.LevelChange{Before: before.Level, After: after.Level, CurrentXP: after.CurrentXP, NextLevelXP: after.NextLevelXP},
		Wallet: wallet,
	}, nil
}

// ClaimAchievements records every pending achievement id, then pays the
// sum of their rewards.
func (s *Service) ClaimAchievements(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
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
	m := s.metrics(st, act, inv, Streak(act, sess.now, st.StreakProtectDate))
	pending := PendingAchievements(s.cat, m, st.Achievements)
	if len(pending) == 0 {
		return nil, fmt.Errorf("no achievements pending: %w", ErrNotEligible)
	}
	ids := make([]string, len(pending))
	total := 0
	for i, a := range pending {
		ids[i] = a.ID
		total += a.Reward
	}
	resp, err := s.payGuarded(ctx, sess, "achievements", store.FieldAchievements, st.Achievements.With(ids...).String(), total)
	if err != nil {
		return nil, err
	}
	resp.Period = ""
	resp.IDs = ids
	return resp, nil
}

// ClaimMission pays one daily or weekly mission for its current period.
func (s *Service) ClaimMission(ctx context.Context, playerID, missionID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	act, err := s.activity(ctx, sess)
	if err != nil {
		return nil, err
	}
	var status *models.MissionStatus
	for _, m := range Missions(s.cat, act, sess.state.ClaimedMissions, sess.now) {
		if m.ID == missionID {
			status = &m
			break
		}
	}
	if status == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMission, missionID)
	}
	key := MissionKey(status.ID, status.Period)
	if status.Claimed {
		return nil, fmt.Errorf("mission %s: %w", key, ErrAlreadyClaimed)
	}
	if !status.Complete {
		return nil, fmt.Errorf("mission %s %d/%d: %w", key, status.Progress, status.Target, ErrNotEligible)
	}
	next := LiveMissionKeys(s.cat, sess.state.ClaimedMissions, sess.now).With(key)
	resp, err := s.payGuarded(ctx, sess, "mission "+status.ID, store.FieldClaimedMissions, next.String(), status.Reward)
	if err != nil {
		return nil, err
	}
	resp.Period = status.Period
	resp.IDs = []string{status.ID}
	return resp, nil
}

// ClaimPomodoro pays the focus reward once per day.
func (s *Service) ClaimPomodoro(ctx context.Context, playerID string) (*models.ClaimResponse, error) {
	defer s.lock(playerID)()
	sess, err := s.begin(ctx, playerID)
	if err != nil {
		return nil, err
	}
	today := DayID(sess.now)
	if sess.state.Pomodoro.ClaimedFor(today) {
		return nil, fmt.Errorf("pomodoro %s: %w", today, ErrAlreadyClaimed)
	}
	return s.payGuarded(ctx, sess, "pomodoro", store.FieldPomodoro, today, s.cat.Prices.Pomodoro)
}
