package reward

import "sort"

// EventKey identifies an XP-earning event in the reward tables
type EventKey string

const (
	EventTaskComplete             EventKey = "TASK_COMPLETE"
	EventTaskCompleteHighPriority EventKey = "TASK_COMPLETE_HIGH_PRIORITY"
	EventMeetingProcessed         EventKey = "MEETING_PROCESSED"
	EventStreakBonus3             EventKey = "STREAK_BONUS_3"
	EventStreakBonus7             EventKey = "STREAK_BONUS_7"
	EventStreakBonus14            EventKey = "STREAK_BONUS_14"
)

// Tables holds the immutable reward configuration: XP per event key,
// cumulative XP thresholds per level, and streak bonus tiers. Built once
// at process start and never mutated afterwards.
type Tables struct {
	xp              map[EventKey]int64
	levelThresholds []int64
	streakTiers     []int
	tierEvents      map[int]EventKey
}

// DefaultTables returns the built-in reward configuration
func DefaultTables() *Tables {
	return &Tables{
		xp: map[EventKey]int64{
			EventTaskComplete:             10,
			EventTaskCompleteHighPriority: 20,
			EventMeetingProcessed:         5,
			EventStreakBonus3:             15,
			EventStreakBonus7:             40,
			EventStreakBonus14:            100,
		},
		// levelThresholds[i] is the cumulative XP required for level i+1.
		// Strictly increasing; growth per level rises by 100.
		levelThresholds: []int64{0, 100, 250, 500, 900, 1400, 2000, 2700, 3500, 4400},
		streakTiers:     []int{3, 7, 14},
		tierEvents: map[int]EventKey{
			3:  EventStreakBonus3,
			7:  EventStreakBonus7,
			14: EventStreakBonus14,
		},
	}
}

// XPFor looks up the XP amount for an event key
func (t *Tables) XPFor(key EventKey) (int64, bool) {
	amount, ok := t.xp[key]
	return amount, ok
}

// LevelFor returns the level for a cumulative XP total. The result is a
// deterministic, non-decreasing step function of xpTotal.
func (t *Tables) LevelFor(xpTotal int64) int {
	// First threshold strictly above xpTotal; level is its index.
	idx := sort.Search(len(t.levelThresholds), func(i int) bool {
		return t.levelThresholds[i] > xpTotal
	})
	if idx == 0 {
		return 1
	}
	return idx
}

// NextLevelThreshold returns the cumulative XP needed for the next level,
// false when already at the top of the table
func (t *Tables) NextLevelThreshold(level int) (int64, bool) {
	if level < 1 || level >= len(t.levelThresholds) {
		return 0, false
	}
	return t.levelThresholds[level], true
}

// StreakTierCrossed reports the bonus tier crossed by moving a streak
// from prev to curr, if any
func (t *Tables) StreakTierCrossed(prev, curr int) (int, bool) {
	for _, tier := range t.streakTiers {
		if prev < tier && curr >= tier {
			return tier, true
		}
	}
	return 0, false
}

// StreakBonusEvent returns the event key awarded for a bonus tier
func (t *Tables) StreakBonusEvent(tier int) (EventKey, bool) {
	key, ok := t.tierEvents[tier]
	return key, ok
}
