package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/lifequest/backend/internal/models"
)

// Field names one persisted player column. The engine addresses storage
// only through these names.
type Field string

const (
	FieldGold             Field = "gold"
	FieldCurrentXP        Field = "current_xp"
	FieldNextLevelXP      Field = "next_level_xp"
	FieldLevel            Field = "level"
	FieldDungeonFloor     Field = "dungeon_floor"
	FieldRebirthCount     Field = "rebirth_count"
	FieldTitle            Field = "title"
	FieldJobClass         Field = "job_class"
	FieldEquippedPet      Field = "equipped_pet"
	FieldWeeklyBossDamage Field = "weekly_boss_damage"
	FieldBossWeek         Field = "boss_week"
	FieldLoginStreak      Field = "login_streak"
	FieldLastLogin        Field = "last_login"
	FieldDailyClaimed     Field = "daily_claimed"
	FieldWeeklyClaimed    Field = "weekly_claimed"
	FieldSeasonalClaimed  Field = "seasonal_claimed"
	FieldBossClaimed      Field = "boss_claimed"
	FieldWeeklyTicket     Field = "last_weekly_ticket"
	FieldMonthlySRTicket  Field = "last_monthly_sr_ticket"
	FieldFreeGacha        Field = "last_free_gacha"
	FieldPomodoro         Field = "last_pomodoro"
	FieldRestWeek         Field = "last_rest_week"
	FieldStreakProtect    Field = "streak_protect_date"
	FieldAchievements     Field = "achievements"
	FieldUnlockedTitles   Field = "unlocked_titles"
	FieldClaimedMissions  Field = "claimed_missions"
	FieldGachaTickets     Field = "gacha_tickets"
	FieldFocusStart       Field = "focus_start"
	FieldFocusLog         Field = "focus_log"
	FieldOutingStart      Field = "outing_start"
)

// FieldSpec describes one column: its default and whether the record is
// unusable without it.
type FieldSpec struct {
	Field    Field
	Default  string
	Required bool
	Numeric  bool
}

// Schema is the versioned player-record layout.
var Schema = []FieldSpec{
	{Field: FieldGold, Default: "0", Required: true, Numeric: true},
	{Field: FieldCurrentXP, Default: "0", Required: true, Numeric: true},
	{Field: FieldNextLevelXP, Default: "100", Required: true, Numeric: true},
	{Field: FieldLevel, Default: "1", Required: true, Numeric: true},
	{Field: FieldDungeonFloor, Default: "1", Required: true, Numeric: true},
	{Field: FieldRebirthCount, Default: "0", Numeric: true},
	{Field: FieldTitle},
	{Field: FieldJobClass},
	{Field: FieldEquippedPet},
	{Field: FieldWeeklyBossDamage, Default: "0", Numeric: true},
	{Field: FieldBossWeek},
	{Field: FieldLoginStreak, Default: "0", Numeric: true},
	{Field: FieldLastLogin},
	{Field: FieldDailyClaimed},
	{Field: FieldWeeklyClaimed},
	{Field: FieldSeasonalClaimed},
	{Field: FieldBossClaimed},
	{Field: FieldWeeklyTicket},
	{Field: FieldMonthlySRTicket},
	{Field: FieldFreeGacha},
	{Field: FieldPomodoro},
	{Field: FieldRestWeek},
	{Field: FieldStreakProtect},
	{Field: FieldAchievements},
	{Field: FieldUnlockedTitles},
	{Field: FieldClaimedMissions},
	{Field: FieldGachaTickets, Default: "0", Numeric: true},
	{Field: FieldFocusStart},
	{Field: FieldFocusLog},
	{Field: FieldOutingStart},
}

var specByField = func() map[Field]FieldSpec {
	m := make(map[Field]FieldSpec, len(Schema))
	for _, s := range Schema {
		m[s.Field] = s
	}
	return m
}()

// Known reports whether f is part of the schema.
func Known(f Field) bool {
	_, ok := specByField[f]
	return ok
}

// ToInt parses stored text defensively. Empty or non-numeric input yields
// def; decimal text is truncated.
func ToInt(value string, def int) int {
	v := strings.TrimSpace(value)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return def
}

func parsesAsNumber(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

// EncodeInt formats an integer field for storage.
func EncodeInt(n int) string { return strconv.Itoa(n) }

// EncodeTime formats a nullable timestamp field. Nil clears the field.
func EncodeTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func decodeTime(value string) *time.Time {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}

// DecodePlayer builds a PlayerState from raw column text. present lists the
// columns the store actually has; a missing required column or a garbage
// value in one is a SchemaError, while optional columns degrade to their
// defaults.
func DecodePlayer(id string, raw map[Field]string, present map[Field]bool) (models.PlayerState, error) {
	for _, spec := range Schema {
		if !spec.Required {
			continue
		}
		if !present[spec.Field] {
			return models.PlayerState{}, &SchemaError{Field: spec.Field, Reason: "column missing"}
		}
		if spec.Numeric && !parsesAsNumber(raw[spec.Field]) {
			return models.PlayerState{}, &SchemaError{Field: spec.Field, Reason: "value " + strconv.Quote(raw[spec.Field]) + " is not numeric"}
		}
	}

	num := func(f Field) int {
		return ToInt(raw[f], ToInt(specByField[f].Default, 0))
	}
	text := func(f Field) string { return strings.TrimSpace(raw[f]) }

	s := models.PlayerState{
		PlayerID:          id,
		Gold:              max(0, num(FieldGold)),
		CurrentXP:         max(0, num(FieldCurrentXP)),
		NextLevelXP:       num(FieldNextLevelXP),
		Level:             max(1, num(FieldLevel)),
		DungeonFloor:      max(1, num(FieldDungeonFloor)),
		RebirthCount:      max(0, num(FieldRebirthCount)),
		Title:             text(FieldTitle),
		JobClass:          text(FieldJobClass),
		EquippedPet:       text(FieldEquippedPet),
		WeeklyBossDamage:  max(0, num(FieldWeeklyBossDamage)),
		BossWeek:          text(FieldBossWeek),
		LoginStreak:       max(0, num(FieldLoginStreak)),
		LastLogin:         models.ClaimGuard(text(FieldLastLogin)),
		DailyClaim:        models.ClaimGuard(text(FieldDailyClaimed)),
		WeeklyClaim:       models.ClaimGuard(text(FieldWeeklyClaimed)),
		SeasonalClaim:     models.ClaimGuard(text(FieldSeasonalClaimed)),
		BossClaim:         models.ClaimGuard(text(FieldBossClaimed)),
		WeeklyTicket:      models.ClaimGuard(text(FieldWeeklyTicket)),
		MonthlySRTicket:   models.ClaimGuard(text(FieldMonthlySRTicket)),
		FreeGacha:         models.ClaimGuard(text(FieldFreeGacha)),
		Pomodoro:          models.ClaimGuard(text(FieldPomodoro)),
		RestWeek:          models.ClaimGuard(text(FieldRestWeek)),
		StreakProtectDate: text(FieldStreakProtect),
		Achievements:      models.ParseIDSet(raw[FieldAchievements]),
		UnlockedTitles:    models.ParseIDSet(raw[FieldUnlockedTitles]),
		ClaimedMissions:   models.ParseIDSet(raw[FieldClaimedMissions]),
		GachaTickets:      max(0, num(FieldGachaTickets)),
		FocusStart:        decodeTime(raw[FieldFocusStart]),
		FocusLog:          text(FieldFocusLog),
		OutingStart:       decodeTime(raw[FieldOutingStart]),
	}
	if s.NextLevelXP <= 0 {
		s.NextLevelXP = 100
	}
	return s, nil
}
