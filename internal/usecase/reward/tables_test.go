package reward

import "testing"

func TestLevelFor(t *testing.T) {
	tables := DefaultTables()

	cases := []struct {
		xp    int64
		level int
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{4399, 9},
		{4400, 10},
		{1000000, 10},
	}

	for _, tc := range cases {
		if got := tables.LevelFor(tc.xp); got != tc.level {
			t.Errorf("LevelFor(%d) = %d, want %d", tc.xp, got, tc.level)
		}
	}
}

func TestLevelForNonDecreasing(t *testing.T) {
	tables := DefaultTables()

	prev := 0
	for xp := int64(0); xp <= 5000; xp += 7 {
		level := tables.LevelFor(xp)
		if level < prev {
			t.Fatalf("level regressed at xp=%d: %d -> %d", xp, prev, level)
		}
		prev = level
	}
}

func TestNextLevelThreshold(t *testing.T) {
	tables := DefaultTables()

	threshold, ok := tables.NextLevelThreshold(1)
	if !ok || threshold != 100 {
		t.Fatalf("NextLevelThreshold(1) = %d, %v; want 100, true", threshold, ok)
	}

	if _, ok := tables.NextLevelThreshold(10); ok {
		t.Fatal("expected no threshold past the top level")
	}
}

func TestXPFor(t *testing.T) {
	tables := DefaultTables()

	cases := map[EventKey]int64{
		EventTaskComplete:             10,
		EventTaskCompleteHighPriority: 20,
		EventMeetingProcessed:         5,
		EventStreakBonus3:             15,
		EventStreakBonus7:             40,
		EventStreakBonus14:            100,
	}
	for key, want := range cases {
		got, ok := tables.XPFor(key)
		if !ok || got != want {
			t.Errorf("XPFor(%s) = %d, %v; want %d, true", key, got, ok, want)
		}
	}

	if _, ok := tables.XPFor("NO_SUCH_EVENT"); ok {
		t.Fatal("expected unknown event key to miss")
	}
}

func TestStreakTierCrossed(t *testing.T) {
	tables := DefaultTables()

	if tier, ok := tables.StreakTierCrossed(2, 3); !ok || tier != 3 {
		t.Fatalf("StreakTierCrossed(2, 3) = %d, %v; want 3, true", tier, ok)
	}
	if tier, ok := tables.StreakTierCrossed(6, 7); !ok || tier != 7 {
		t.Fatalf("StreakTierCrossed(6, 7) = %d, %v; want 7, true", tier, ok)
	}
	if _, ok := tables.StreakTierCrossed(3, 4); ok {
		t.Fatal("no tier should be crossed between 3 and 4")
	}
	// A reset never crosses a tier.
	if _, ok := tables.StreakTierCrossed(7, 1); ok {
		t.Fatal("a reset must not cross a tier")
	}
}
