package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateMaterialCache invalidates all material-related caches
func InvalidateMaterialCache(ctx context.Context, cm *CacheManager, materialID uint, ownerID uint) {
	SafeDelete(ctx, cm.Material,
		fmt.Sprintf("id:%d", materialID),
		fmt.Sprintf("owner_view:%d", materialID))

	SafeInvalidatePattern(ctx, cm.Material, fmt.Sprintf("owner:%d:*", ownerID))
	SafeInvalidatePattern(ctx, cm.Material, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("material:%d:*", materialID))
}

// InvalidateUserCache invalidates cached user lookups
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint, email string) {
	SafeDelete(ctx, cm.User,
		fmt.Sprintf("id:%d", userID),
		fmt.Sprintf("email:%s", email))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
}
