package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pet-health-monitor/internal/domain/tips"
)

type tipRepo struct {
	mu   sync.RWMutex
	byID map[string]tips.Tip
	seq  map[string]int
	n    int
}

func NewTipRepo() tips.TipRepository {
	return &tipRepo{
		byID: make(map[string]tips.Tip),
		seq:  make(map[string]int),
	}
}

func (r *tipRepo) Create(ctx context.Context, t tips.Tip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[t.ID]; exists {
		return ErrAlreadyExists
	}
	r.n++
	r.byID[t.ID] = cloneTip(t)
	r.seq[t.ID] = r.n
	return nil
}

func (r *tipRepo) Update(ctx context.Context, t tips.Tip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; !exists {
		return tips.ErrTipNotFound
	}
	r.byID[t.ID] = cloneTip(t)
	return nil
}

func (r *tipRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return tips.ErrTipNotFound
	}
	delete(r.byID, id)
	delete(r.seq, id)
	return nil
}

func (r *tipRepo) GetByID(ctx context.Context, id string) (tips.Tip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return tips.Tip{}, tips.ErrTipNotFound
	}
	return cloneTip(t), nil
}

func (r *tipRepo) List(ctx context.Context, f tips.TipFilter) ([]tips.Tip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tips.Tip, 0)
	for _, t := range r.byID {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.ActiveOnly && !t.Active {
			continue
		}
		out = append(out, cloneTip(t))
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] < r.seq[out[j].ID] })
	return out, nil
}

func cloneTip(t tips.Tip) tips.Tip {
	t.Tags = append([]string(nil), t.Tags...)
	return t
}

type ruleRepo struct {
	mu   sync.RWMutex
	byID map[string]tips.Rule
	seq  map[string]int
	n    int
}

func NewRuleRepo() tips.RuleRepository {
	return &ruleRepo{
		byID: make(map[string]tips.Rule),
		seq:  make(map[string]int),
	}
}

func (r *ruleRepo) Create(ctx context.Context, rule tips.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rule.ID) == "" {
		return ErrIDRequired
	}
	if _, exists := r.byID[rule.ID]; exists {
		return ErrAlreadyExists
	}
	r.n++
	r.byID[rule.ID] = rule
	r.seq[rule.ID] = r.n
	return nil
}

func (r *ruleRepo) Update(ctx context.Context, rule tips.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rule.ID]; !exists {
		return tips.ErrRuleNotFound
	}
	r.byID[rule.ID] = rule
	return nil
}

func (r *ruleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return tips.ErrRuleNotFound
	}
	delete(r.byID, id)
	delete(r.seq, id)
	return nil
}

func (r *ruleRepo) GetByID(ctx context.Context, id string) (tips.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.byID[id]
	if !ok {
		return tips.Rule{}, tips.ErrRuleNotFound
	}
	return rule, nil
}

// List: prioridad ascendente, luego orden de creación.
func (r *ruleRepo) List(ctx context.Context, activeOnly bool) ([]tips.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tips.Rule, 0)
	for _, rule := range r.byID {
		if activeOnly && !rule.Active {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return r.seq[out[i].ID] < r.seq[out[j].ID]
	})
	return out, nil
}
