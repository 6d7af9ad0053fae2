package reward

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// fakeRewardRepo is an in-memory RewardRepository. The mutex stands in
// for the row locks the real repository takes.
type fakeRewardRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entities.RewardAccount
	streaks  map[string]*entities.Streak
	failure  error
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{
		accounts: make(map[uuid.UUID]*entities.RewardAccount),
		streaks:  make(map[string]*entities.Streak),
	}
}

func (f *fakeRewardRepo) GetAccount(_ context.Context, userID uuid.UUID) (*entities.RewardAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (f *fakeRewardRepo) UpdateAccount(_ context.Context, userID uuid.UUID, mutate func(*entities.RewardAccount) error) (*entities.RewardAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return nil, f.failure
	}
	account, ok := f.accounts[userID]
	if !ok {
		account = &entities.RewardAccount{UserID: userID, XPTotal: 0, Level: 1}
		f.accounts[userID] = account
	}
	if err := mutate(account); err != nil {
		return nil, err
	}
	copied := *account
	return &copied, nil
}

func (f *fakeRewardRepo) ListStreaks(_ context.Context, userID uuid.UUID) ([]*entities.Streak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Streak
	for _, s := range f.streaks {
		if s.UserID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRewardRepo) UpdateStreak(_ context.Context, userID uuid.UUID, kind entities.StreakKind, mutate func(*entities.Streak) error) (*entities.Streak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failure != nil {
		return nil, f.failure
	}
	key := fmt.Sprintf("%s/%s", userID, kind)
	streak, ok := f.streaks[key]
	if !ok {
		streak = &entities.Streak{UserID: userID, Kind: kind}
		f.streaks[key] = streak
	}
	if err := mutate(streak); err != nil {
		return nil, err
	}
	copied := *streak
	return &copied, nil
}

func TestAwardXP(t *testing.T) {
	repo := newFakeRewardRepo()
	ledger := NewLedger(repo, DefaultTables(), nil)
	userID := uuid.New()

	result, err := ledger.AwardXP(context.Background(), userID, EventTaskComplete)
	if err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	if result.XPAwarded != 10 || result.XPTotal != 10 {
		t.Fatalf("unexpected award: awarded=%d total=%d", result.XPAwarded, result.XPTotal)
	}
	if result.Level != 1 || result.LeveledUp {
		t.Fatalf("unexpected level state: level=%d leveledUp=%v", result.Level, result.LeveledUp)
	}
}

func TestAwardXPLevelUp(t *testing.T) {
	repo := newFakeRewardRepo()
	ledger := NewLedger(repo, DefaultTables(), nil)
	userID := uuid.New()

	// Nine completions leave the account at 90 XP, still level 1.
	for i := 0; i < 9; i++ {
		if _, err := ledger.AwardXP(context.Background(), userID, EventTaskComplete); err != nil {
			t.Fatalf("AwardXP failed: %v", err)
		}
	}

	// The tenth crosses the 100 XP threshold.
	result, err := ledger.AwardXP(context.Background(), userID, EventTaskComplete)
	if err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	if result.XPTotal != 100 {
		t.Fatalf("expected 100 XP, got %d", result.XPTotal)
	}
	if !result.LeveledUp || result.Level != 2 {
		t.Fatalf("expected level-up to 2, got level=%d leveledUp=%v", result.Level, result.LeveledUp)
	}
	if result.NewLevel == nil || *result.NewLevel != 2 {
		t.Fatal("expected NewLevel to report 2")
	}

	// The next award does not report another level-up.
	result, err = ledger.AwardXP(context.Background(), userID, EventTaskComplete)
	if err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	if result.LeveledUp {
		t.Fatal("level-up reported twice for a single crossing")
	}
}

func TestAwardXPUnknownEvent(t *testing.T) {
	repo := newFakeRewardRepo()
	ledger := NewLedger(repo, DefaultTables(), nil)
	userID := uuid.New()

	if _, err := ledger.AwardXP(context.Background(), userID, "NO_SUCH_EVENT"); err == nil {
		t.Fatal("expected unknown event key to fail")
	}

	// Nothing was written.
	account, err := repo.GetAccount(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account != nil {
		t.Fatalf("account mutated on unknown event: %+v", account)
	}
}

func TestAwardXPRepoFailure(t *testing.T) {
	repo := newFakeRewardRepo()
	repo.failure = errors.New("connection reset")
	ledger := NewLedger(repo, DefaultTables(), nil)

	if _, err := ledger.AwardXP(context.Background(), uuid.New(), EventTaskComplete); err == nil {
		t.Fatal("expected repo failure to surface")
	}
}

// retryingRewardRepo runs the mutate closure once against a stale copy,
// discards it, then commits a second invocation, the way a
// serialization-failure retry would.
type retryingRewardRepo struct {
	*fakeRewardRepo
	stale entities.RewardAccount
}

func (r *retryingRewardRepo) UpdateAccount(ctx context.Context, userID uuid.UUID, mutate func(*entities.RewardAccount) error) (*entities.RewardAccount, error) {
	discarded := r.stale
	if err := mutate(&discarded); err != nil {
		return nil, err
	}
	return r.fakeRewardRepo.UpdateAccount(ctx, userID, mutate)
}

func TestAwardXPRetriedMutate(t *testing.T) {
	base := newFakeRewardRepo()
	userID := uuid.New()

	// Committed state already crossed the level 2 threshold.
	base.accounts[userID] = &entities.RewardAccount{UserID: userID, XPTotal: 100, Level: 2}

	// The discarded first attempt sees a stale level 1 account and would
	// level up; the committed attempt does not.
	repo := &retryingRewardRepo{
		fakeRewardRepo: base,
		stale:          entities.RewardAccount{UserID: userID, XPTotal: 90, Level: 1},
	}
	ledger := NewLedger(repo, DefaultTables(), nil)

	result, err := ledger.AwardXP(context.Background(), userID, EventTaskComplete)
	if err != nil {
		t.Fatalf("AwardXP failed: %v", err)
	}
	if result.XPTotal != 110 || result.Level != 2 {
		t.Fatalf("result not from committed row: total=%d level=%d", result.XPTotal, result.Level)
	}
	if result.LeveledUp || result.NewLevel != nil {
		t.Fatalf("level-up leaked from discarded attempt: %+v", result)
	}
}

func TestAwardXPConcurrent(t *testing.T) {
	repo := newFakeRewardRepo()
	ledger := NewLedger(repo, DefaultTables(), nil)
	userID := uuid.New()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := ledger.AwardXP(context.Background(), userID, EventTaskComplete); err != nil {
				t.Errorf("AwardXP failed: %v", err)
			}
		}()
	}
	wg.Wait()

	account, err := repo.GetAccount(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account == nil || account.XPTotal != n*10 {
		t.Fatalf("lost increments: want %d XP, got %+v", n*10, account)
	}
}
