package tips_test

import (
	"context"
	"testing"

	"pet-health-monitor/internal/adapters/storage/memory"
	"pet-health-monitor/internal/domain/health"
	"pet-health-monitor/internal/domain/tips"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScores map[string]float64

func (f fakeScores) LatestScore(ctx context.Context, animalID string) (health.HealthScore, bool, error) {
	v, ok := f[animalID]
	if !ok {
		return health.HealthScore{}, false, nil
	}
	return health.HealthScore{AnimalID: animalID, Overall: v}, true, nil
}

func boolPtr(b bool) *bool { return &b }

func newService(scores fakeScores) *tips.Service {
	return tips.NewService(memory.NewTipRepo(), memory.NewRuleRepo(), scores)
}

func mustRule(t *testing.T, svc *tips.Service, in tips.CreateRuleInput) tips.Rule {
	t.Helper()
	r, err := svc.CreateRule(context.Background(), in)
	require.NoError(t, err)
	return r
}

func TestRecommend_LowestPriorityWins(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	mustRule(t, svc, tips.CreateRuleInput{Name: "broad", TipType: tips.TipTypeCare, MinScore: 0, MaxScore: 100, Content: "c", Priority: 5})
	low := mustRule(t, svc, tips.CreateRuleInput{Name: "low", TipType: tips.TipTypeAlert, MinScore: 0, MaxScore: 60, Content: "a", Priority: 1})
	mustRule(t, svc, tips.CreateRuleInput{Name: "inactive", TipType: tips.TipTypeAlert, MinScore: 0, MaxScore: 60, Content: "x", Priority: 1, Active: boolPtr(false)})

	got, ok, err := svc.Recommend(ctx, 45)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, low.ID, got.ID)

	// borde superior inclusivo
	got, ok, err = svc.Recommend(ctx, 60)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, low.ID, got.ID)

	got, ok, err = svc.Recommend(ctx, 61)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "broad", got.Name)
}

func TestRecommend_NoMatch(t *testing.T) {
	svc := newService(nil)
	mustRule(t, svc, tips.CreateRuleInput{Name: "good", TipType: tips.TipTypeHealth, MinScore: 80, MaxScore: 100, Content: "ok"})

	_, ok, err := svc.Recommend(context.Background(), 70)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateRule_Validation(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	cases := []tips.CreateRuleInput{
		{Name: "", TipType: tips.TipTypeCare, MaxScore: 10, Content: "c"},
		{Name: "n", TipType: "promo", MaxScore: 10, Content: "c"},
		{Name: "n", TipType: tips.TipTypeCare, MinScore: 50, MaxScore: 10, Content: "c"},
		{Name: "n", TipType: tips.TipTypeCare, MaxScore: 120, Content: "c"},
		{Name: "n", TipType: tips.TipTypeCare, MaxScore: 10, Content: "c", Priority: -1},
	}
	for i, in := range cases {
		_, err := svc.CreateRule(ctx, in)
		assert.ErrorIs(t, err, tips.ErrInvalidInput, "case %d", i)
	}

	r := mustRule(t, svc, tips.CreateRuleInput{Name: "n", TipType: tips.TipTypeCare, MaxScore: 10, Content: "c"})
	assert.Equal(t, 1, r.Priority)
	assert.True(t, r.Active)
}

func TestTips_CRUDAndFilter(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	a, err := svc.CreateTip(ctx, tips.CreateTipInput{Type: tips.TipTypeHealth, Content: " keep going ", Tags: []string{"health", " ", "good"}})
	require.NoError(t, err)
	assert.Equal(t, "keep going", a.Content)
	assert.Equal(t, []string{"health", "good"}, a.Tags)

	_, err = svc.CreateTip(ctx, tips.CreateTipInput{Type: tips.TipTypeAlert, Content: "check now", Active: boolPtr(false)})
	require.NoError(t, err)

	_, err = svc.CreateTip(ctx, tips.CreateTipInput{Type: "promo", Content: "x"})
	assert.ErrorIs(t, err, tips.ErrInvalidInput)

	all, err := svc.ListTips(ctx, tips.TipFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListTips(ctx, tips.TipFilter{Type: tips.TipTypeAlert, ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	content := "updated"
	upd, err := svc.UpdateTip(ctx, a.ID, tips.UpdateTipInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "updated", upd.Content)

	require.NoError(t, svc.DeleteTip(ctx, a.ID))
	_, err = svc.GetTip(ctx, a.ID)
	assert.ErrorIs(t, err, tips.ErrTipNotFound)
}

func TestForAnimal(t *testing.T) {
	svc := newService(fakeScores{"sick": 35, "fine": 90})
	ctx := context.Background()

	mustRule(t, svc, tips.CreateRuleInput{Name: "low", TipType: tips.TipTypeAlert, MinScore: 0, MaxScore: 60, Content: "check", Priority: 1})
	_, err := svc.CreateTip(ctx, tips.CreateTipInput{Type: tips.TipTypeAlert, Content: "abnormal vitals"})
	require.NoError(t, err)
	_, err = svc.CreateTip(ctx, tips.CreateTipInput{Type: tips.TipTypeCare, Content: "regular exams"})
	require.NoError(t, err)

	rec, err := svc.ForAnimal(ctx, "sick")
	require.NoError(t, err)
	require.NotNil(t, rec.Rule)
	assert.Equal(t, "low", rec.Rule.Name)
	require.Len(t, rec.Tips, 1)
	assert.Equal(t, "abnormal vitals", rec.Tips[0].Content)

	rec, err = svc.ForAnimal(ctx, "fine")
	require.NoError(t, err)
	assert.Nil(t, rec.Rule)
	assert.Empty(t, rec.Tips)

	_, err = svc.ForAnimal(ctx, "new")
	assert.ErrorIs(t, err, tips.ErrNoScore)
}
