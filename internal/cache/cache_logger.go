package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// Cache keys shared by the repositories
const (
	BadgeCatalogKey = "catalog"
)

func CategoriesKey(subject string) string {
	return fmt.Sprintf("categories:%s", subject)
}

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

// InvalidateBadgeCatalog drops the cached badge definitions
func InvalidateBadgeCatalog(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Badge, BadgeCatalogKey)
}

// InvalidateQuestionCategories drops cached categories for one subject, or
// for all subjects when subject is empty
func InvalidateQuestionCategories(ctx context.Context, cm *CacheManager, subject string) {
	if subject == "" {
		SafeInvalidatePattern(ctx, cm.Question, "categories:*")
		return
	}
	SafeDelete(ctx, cm.Question, CategoriesKey(subject))
}
