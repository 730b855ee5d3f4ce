// Package cache 以來源 URL 快取匯入後的食譜草稿
package cache

import (
	"context"
	"fmt"

	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

// keyPrefix Redis 與記憶體快取共用的鍵前綴
const keyPrefix = "recipe:draft:"

// Store 草稿快取，Get 未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, url string) (*recipe.Draft, error)
	Set(ctx context.Context, url string, draft *recipe.Draft) error
	Ping(ctx context.Context) error
	Close() error
}

// Key 產生來源 URL 的快取鍵
func Key(url string) string {
	return keyPrefix + common.HashString(url)
}

// NewStore 依 cache.backend 建立快取，停用時回傳 nil
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Cache.Backend {
	case "memory":
		return NewManager(cfg.Cache), nil
	case "redis":
		store, err := NewRedisStore(ctx, cfg.Redis, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
