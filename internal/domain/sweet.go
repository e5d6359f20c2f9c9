package domain

import (
	"context"
	"time"
)

// Sweet 库存条目：数量/价格不允许为负
type Sweet struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	Name     string  `gorm:"size:191;not null;index" json:"name"`
	Category string  `gorm:"size:64;not null;index" json:"category"`
	Price    float64 `gorm:"not null" json:"price"`
	Quantity int     `gorm:"not null;default:0" json:"quantity"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Sweet) TableName() string { return "sweets" }

// SweetFilter 条件之间 AND 组合；零值字段不参与过滤
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

type SweetRepository interface {
	Create(ctx context.Context, s *Sweet) error
	FindByID(ctx context.Context, id string) (*Sweet, error)
	List(ctx context.Context) ([]Sweet, error)
	Search(ctx context.Context, f SweetFilter) ([]Sweet, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) (int64, error)
	// DecrementStock 条件扣减（quantity >= 1 才生效），返回影响行数
	DecrementStock(ctx context.Context, id string) (int64, error)
	IncrementStock(ctx context.Context, id string, amount int) (int64, error)
}

// SweetInput 新建条目入参：price 必填，quantity 缺省为 0
type SweetInput struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

func (in *SweetInput) Validate() error {
	var bad []string
	if in.Name == "" {
		bad = append(bad, "name")
	}
	if in.Category == "" {
		bad = append(bad, "category")
	}
	if in.Price == nil || *in.Price < 0 {
		bad = append(bad, "price")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		bad = append(bad, "quantity")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

func (in *SweetInput) ToSweet() *Sweet {
	s := &Sweet{Name: in.Name, Category: in.Category, Price: *in.Price}
	if in.Quantity != nil {
		s.Quantity = *in.Quantity
	}
	return s
}

// SweetPatch 部分更新：nil 字段保持原值
type SweetPatch struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

func (p *SweetPatch) Validate() error {
	var bad []string
	if p.Name != nil && *p.Name == "" {
		bad = append(bad, "name")
	}
	if p.Category != nil && *p.Category == "" {
		bad = append(bad, "category")
	}
	if p.Price != nil && *p.Price < 0 {
		bad = append(bad, "price")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		bad = append(bad, "quantity")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// Fields 转成 gorm Updates 需要的列名映射
func (p *SweetPatch) Fields() map[string]any {
	m := map[string]any{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.Quantity != nil {
		m["quantity"] = *p.Quantity
	}
	return m
}
