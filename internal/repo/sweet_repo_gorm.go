package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sweetshop-api/internal/domain"
)

type SweetRepo struct{ db *gorm.DB }

func NewSweetRepo(db *gorm.DB) *SweetRepo { return &SweetRepo{db: db} }

func (r *SweetRepo) Create(ctx context.Context, s *domain.Sweet) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SweetRepo) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	var s domain.Sweet
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *SweetRepo) List(ctx context.Context) ([]domain.Sweet, error) {
	var out []domain.Sweet
	err := r.db.WithContext(ctx).Order("created_at").Find(&out).Error
	return out, err
}

func (r *SweetRepo) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	q := r.db.WithContext(ctx).Model(&domain.Sweet{})
	if s := strings.TrimSpace(f.Name); s != "" {
		// 大小写不敏感的子串匹配
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	var out []domain.Sweet
	err := q.Order("created_at").Find(&out).Error
	return out, err
}

func (r *SweetRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.Sweet{}).Where("id = ?", id).Updates(fields).Error
}

func (r *SweetRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sweet{})
	return res.RowsAffected, res.Error
}

// DecrementStock 单条件语句扣减，行内原子，杜绝负库存
func (r *SweetRepo) DecrementStock(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Sweet{}).
		Where("id = ? AND quantity >= 1", id).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	return res.RowsAffected, res.Error
}

func (r *SweetRepo) IncrementStock(ctx context.Context, id string, amount int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Sweet{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", amount))
	return res.RowsAffected, res.Error
}
