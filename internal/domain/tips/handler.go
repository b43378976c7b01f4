package tips

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, guard middleware.Guard) {
	r.Route("/tips", func(tr chi.Router) {
		tr.With(guard(permissions.DataView)).Get("/", listTipsHandler(svc))
		tr.With(guard(permissions.UsersManage)).Post("/", createTipHandler(svc))
		tr.With(guard(permissions.DataView)).Get("/{tipID}", getTipHandler(svc))
		tr.With(guard(permissions.UsersManage)).Patch("/{tipID}", updateTipHandler(svc))
		tr.With(guard(permissions.UsersManage)).Delete("/{tipID}", deleteTipHandler(svc))
	})

	r.Route("/tip-rules", func(rr chi.Router) {
		rr.With(guard(permissions.DataView)).Get("/", listRulesHandler(svc))
		rr.With(guard(permissions.UsersManage)).Post("/", createRuleHandler(svc))
		rr.With(guard(permissions.DataView)).Get("/{ruleID}", getRuleHandler(svc))
		rr.With(guard(permissions.UsersManage)).Patch("/{ruleID}", updateRuleHandler(svc))
		rr.With(guard(permissions.UsersManage)).Delete("/{ruleID}", deleteRuleHandler(svc))
	})

	r.With(guard(permissions.DataView)).Get("/animals/{animalID}/tips", animalTipsHandler(svc))
}

type createTipRequest struct {
	Type    TipType  `json:"type" enums:"health_tip,care_tip,alert_tip"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Active  *bool    `json:"is_active"`
}

type updateTipRequest struct {
	Type    *TipType  `json:"type"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
	Active  *bool     `json:"is_active"`
}

type tipResponse struct {
	ID         string    `json:"id"`
	Type       TipType   `json:"type"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Active     bool      `json:"is_active"`
	UsageCount int       `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ruleRequest struct {
	Name     *string  `json:"name"`
	TipType  *TipType `json:"tip_type"`
	MinScore *float64 `json:"min_score"`
	MaxScore *float64 `json:"max_score"`
	Content  *string  `json:"tip_content"`
	Active   *bool    `json:"is_active"`
	Priority *int     `json:"priority"`
}

type ruleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TipType   TipType   `json:"tip_type"`
	MinScore  float64   `json:"min_score"`
	MaxScore  float64   `json:"max_score"`
	Content   string    `json:"tip_content"`
	Active    bool      `json:"is_active"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type recommendationResponse struct {
	AnimalID string        `json:"animal_id"`
	Score    float64       `json:"score"`
	Rule     *ruleResponse `json:"rule,omitempty"`
	Tips     []tipResponse `json:"tips"`
}

func listTipsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		activeOnly, _ := strconv.ParseBool(q.Get("active"))
		items, err := svc.ListTips(r.Context(), TipFilter{
			Type:       TipType(strings.TrimSpace(q.Get("type"))),
			ActiveOnly: activeOnly,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]tipResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTipResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createTipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t, err := svc.CreateTip(r.Context(), CreateTipInput{
			Type:    req.Type,
			Content: req.Content,
			Tags:    req.Tags,
			Active:  req.Active,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTipResponse(t))
	}
}

func getTipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.GetTip(r.Context(), chi.URLParam(r, "tipID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTipResponse(t))
	}
}

func updateTipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t, err := svc.UpdateTip(r.Context(), chi.URLParam(r, "tipID"), UpdateTipInput{
			Type:    req.Type,
			Content: req.Content,
			Tags:    req.Tags,
			Active:  req.Active,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTipResponse(t))
	}
}

func deleteTipHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteTip(r.Context(), chi.URLParam(r, "tipID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listRulesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
		items, err := svc.ListRules(r.Context(), activeOnly)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]ruleResponse, 0, len(items))
		for _, rule := range items {
			out = append(out, toRuleResponse(rule))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createRuleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ruleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		in := CreateRuleInput{Active: req.Active}
		if req.Name != nil {
			in.Name = *req.Name
		}
		if req.TipType != nil {
			in.TipType = *req.TipType
		}
		if req.MinScore != nil {
			in.MinScore = *req.MinScore
		}
		if req.MaxScore != nil {
			in.MaxScore = *req.MaxScore
		} else {
			in.MaxScore = 100
		}
		if req.Content != nil {
			in.Content = *req.Content
		}
		if req.Priority != nil {
			in.Priority = *req.Priority
		}

		rule, err := svc.CreateRule(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRuleResponse(rule))
	}
}

func getRuleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, err := svc.GetRule(r.Context(), chi.URLParam(r, "ruleID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRuleResponse(rule))
	}
}

func updateRuleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ruleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		rule, err := svc.UpdateRule(r.Context(), chi.URLParam(r, "ruleID"), UpdateRuleInput{
			Name:     req.Name,
			TipType:  req.TipType,
			MinScore: req.MinScore,
			MaxScore: req.MaxScore,
			Content:  req.Content,
			Active:   req.Active,
			Priority: req.Priority,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRuleResponse(rule))
	}
}

func deleteRuleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteRule(r.Context(), chi.URLParam(r, "ruleID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// animalTipsHandler godoc
// @Summary Recomendación para un animal
// @Description Elige la regla activa de menor prioridad que contiene el último health score.
// @Tags tips
// @Produce json
// @Param animalID path string true "Animal ID"
// @Success 200 {object} recommendationResponse
// @Failure 404 {string} string "animal has no health score yet"
// @Router /animals/{animalID}/tips [get]
func animalTipsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.ForAnimal(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		resp := recommendationResponse{
			AnimalID: rec.AnimalID,
			Score:    rec.Score,
			Tips:     make([]tipResponse, 0, len(rec.Tips)),
		}
		if rec.Rule != nil {
			rr := toRuleResponse(*rec.Rule)
			resp.Rule = &rr
		}
		for _, t := range rec.Tips {
			resp.Tips = append(resp.Tips, toTipResponse(t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrTipNotFound), errors.Is(err, ErrRuleNotFound), errors.Is(err, ErrNoScore):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toTipResponse(t Tip) tipResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return tipResponse{
		ID:         t.ID,
		Type:       t.Type,
		Content:    t.Content,
		Tags:       tags,
		Active:     t.Active,
		UsageCount: t.UsageCount,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func toRuleResponse(r Rule) ruleResponse {
	return ruleResponse{
		ID:        r.ID,
		Name:      r.Name,
		TipType:   r.TipType,
		MinScore:  r.MinScore,
		MaxScore:  r.MaxScore,
		Content:   r.Content,
		Active:    r.Active,
		Priority:  r.Priority,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
