package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	rewarddto "github.com/taskquest-dev/taskquest/internal/adapter/dto/reward"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/cache"
	rewarduc "github.com/taskquest-dev/taskquest/internal/usecase/reward"
)

// accountCacheTTL bounds how stale a cached reward summary can be
const accountCacheTTL = 30 * time.Second

// rewardAccountCacheKey builds the cache key for a user's reward summary
func rewardAccountCacheKey(userID uuid.UUID) string {
	return "reward:account:" + userID.String()
}

// invalidateRewardAccount drops the cached reward summary after an award
// or streak update so the next read reflects it
func invalidateRewardAccount(ctx context.Context, store cache.Store, logger *zap.Logger, userID uuid.UUID) {
	if store == nil {
		return
	}
	if err := store.Delete(ctx, rewardAccountCacheKey(userID)); err != nil && logger != nil {
		logger.Warn("failed to invalidate reward account cache",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

// Reward handles reward account HTTP requests
type Reward struct {
	rewardRepo repositories.RewardRepository
	tables     *rewarduc.Tables
	cache      cache.Store
	logger     *zap.Logger
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(
	rewardRepo repositories.RewardRepository,
	tables *rewarduc.Tables,
	cacheStore cache.Store,
	logger *zap.Logger,
) *Reward {
	return &Reward{
		rewardRepo: rewardRepo,
		tables:     tables,
		cache:      cacheStore,
		logger:     logger,
	}
}

// GetAccount handles GET /v1/rewards/account
func (h *Reward) GetAccount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx := c.Request().Context()
	cacheKey := rewardAccountCacheKey(userID)

	if h.cache != nil {
		if cached, ok, cacheErr := h.cache.Get(ctx, cacheKey); cacheErr == nil && ok {
			var resp rewarddto.AccountResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return HandleSuccess(h.logger, c, &resp)
			}
		}
	}

	account, err := h.rewardRepo.GetAccount(ctx, userID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}

	resp := &rewarddto.AccountResponse{
		Level:   1,
		Streaks: []*rewarddto.StreakResponse{},
	}
	if account != nil {
		resp.XPTotal = account.XPTotal
		resp.Level = account.Level
	}
	if threshold, ok := h.tables.NextLevelThreshold(resp.Level); ok {
		resp.NextLevelThreshold = &threshold
	}

	streaks, err := h.rewardRepo.ListStreaks(ctx, userID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}
	for _, s := range streaks {
		resp.Streaks = append(resp.Streaks, rewarddto.ToStreakEntityResponse(s))
	}

	if h.cache != nil {
		if encoded, encErr := json.Marshal(resp); encErr == nil {
			if cacheErr := h.cache.Set(ctx, cacheKey, string(encoded), accountCacheTTL); cacheErr != nil && h.logger != nil {
				h.logger.Warn("failed to cache reward account",
					zap.String("user_id", userID.String()),
					zap.Error(cacheErr),
				)
			}
		}
	}

	return HandleSuccess(h.logger, c, resp)
}
