package tips

import "context"

type TipFilter struct {
	Type       TipType
	ActiveOnly bool
}

type TipRepository interface {
	Create(ctx context.Context, t Tip) error
	Update(ctx context.Context, t Tip) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Tip, error)
	List(ctx context.Context, f TipFilter) ([]Tip, error)
}

type RuleRepository interface {
	Create(ctx context.Context, r Rule) error
	Update(ctx context.Context, r Rule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Rule, error)
	// List ordena por prioridad ascendente.
	List(ctx context.Context, activeOnly bool) ([]Rule, error)
}
