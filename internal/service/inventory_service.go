package service

import (
	"context"
	"time"

	"sweetshop-api/internal/core/cache"
	"sweetshop-api/internal/domain"
	"sweetshop-api/pkg/utils"
)

const listCacheKey = "sweets:all"

type InventoryService struct {
	sweets   domain.SweetRepository
	cache    *cache.Cache // 可为 nil（未配置 redis）
	cacheTTL time.Duration
}

func NewInventoryService(sweets domain.SweetRepository) *InventoryService {
	return &InventoryService{sweets: sweets}
}

// WithCache 给 GET /items 挂读穿缓存，写操作负责失效
func (s *InventoryService) WithCache(c *cache.Cache, ttl time.Duration) *InventoryService {
	s.cache = c
	s.cacheTTL = ttl
	return s
}

func (s *InventoryService) List(ctx context.Context) ([]domain.Sweet, error) {
	if s.cache == nil {
		return s.sweets.List(ctx)
	}
	out, err := cache.GetOrLoadJSON[[]domain.Sweet](s.cache, ctx, listCacheKey, s.cacheTTL,
		func(ctx context.Context) (*[]domain.Sweet, error) {
			items, e := s.sweets.List(ctx)
			if e != nil {
				return nil, e
			}
			return &items, nil
		})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Sweet{}, nil
	}
	return *out, nil
}

func (s *InventoryService) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	return s.sweets.Search(ctx, f)
}

func (s *InventoryService) Add(ctx context.Context, in *domain.SweetInput) (*domain.Sweet, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sweet := in.ToSweet()
	sweet.ID = utils.NewID()
	if err := s.sweets.Create(ctx, sweet); err != nil {
		return nil, err
	}
	s.dropListCache(ctx)
	return sweet, nil
}

func (s *InventoryService) Update(ctx context.Context, id string, patch *domain.SweetPatch) (*domain.Sweet, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.sweets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.sweets.UpdateFields(ctx, id, patch.Fields()); err != nil {
		return nil, err
	}
	s.dropListCache(ctx)
	return s.mustFind(ctx, id)
}

func (s *InventoryService) Remove(ctx context.Context, id string) error {
	rows, err := s.sweets.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	s.dropListCache(ctx)
	return nil
}

// Purchase 每次恰好扣一件，返回剩余库存
func (s *InventoryService) Purchase(ctx context.Context, id string) (int, error) {
	rows, err := s.sweets.DecrementStock(ctx, id)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		// 区分不存在与无库存
		existing, e := s.sweets.FindByID(ctx, id)
		if e != nil {
			return 0, e
		}
		if existing == nil {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrOutOfStock
	}
	s.dropListCache(ctx)
	cur, err := s.mustFind(ctx, id)
	if err != nil {
		return 0, err
	}
	return cur.Quantity, nil
}

func (s *InventoryService) Restock(ctx context.Context, id string, amount int) (int, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	rows, err := s.sweets.IncrementStock(ctx, id, amount)
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, domain.ErrNotFound
	}
	s.dropListCache(ctx)
	cur, err := s.mustFind(ctx, id)
	if err != nil {
		return 0, err
	}
	return cur.Quantity, nil
}

func (s *InventoryService) mustFind(ctx context.Context, id string) (*domain.Sweet, error) {
	cur, err := s.sweets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	return cur, nil
}

func (s *InventoryService) dropListCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, listCacheKey)
	}
}
