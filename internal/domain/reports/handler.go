package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, guard middleware.Guard) {
	r.With(guard(permissions.DataView)).Get("/users/{userID}/reports", listUserReportsHandler(svc))
	r.With(guard(permissions.DataManage)).Post("/users/{userID}/reports/monthly", monthlyReportHandler(svc))
	r.With(guard(permissions.DataManage)).Post("/users/{userID}/reports/on-demand", onDemandReportHandler(svc))

	r.Route("/reports", func(rr chi.Router) {
		rr.With(guard(permissions.DataView)).Get("/{reportID}", getReportHandler(svc))
		rr.With(guard(permissions.DataExport)).Get("/{reportID}/download", downloadReportHandler(svc))
	})
}

// periodRequest acepta YYYY-MM-DD o RFC3339.
type periodRequest struct {
	Start string `json:"period_start"`
	End   string `json:"period_end"`
}

type onDemandRequest struct {
	periodRequest
	AnimalID string `json:"animal_id"`
}

type summaryResponse struct {
	AnimalCount  int     `json:"animal_count"`
	Scored       int     `json:"scored"`
	Healthy      int     `json:"healthy"`
	Attention    int     `json:"attention"`
	Abnormal     int     `json:"abnormal"`
	AverageScore float64 `json:"average_score"`
}

type reportResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AnimalID    string          `json:"animal_id,omitempty"`
	Type        Type            `json:"type"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Summary     summaryResponse `json:"summary"`
	PeriodStart *time.Time      `json:"period_start,omitempty"`
	PeriodEnd   *time.Time      `json:"period_end,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	IsPaid      bool            `json:"is_paid"`
}

func listUserReportsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByUser(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]reportResponse, 0, len(items))
		for _, rep := range items {
			out = append(out, toReportResponse(rep))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// monthlyReportHandler godoc
// @Summary Generar reporte mensual
// @Tags reports
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param body body periodRequest false "Período (por defecto el último mes)"
// @Success 201 {object} reportResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "user not found"
// @Router /users/{userID}/reports/monthly [post]
func monthlyReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req periodRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		p, err := parsePeriod(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rep, err := svc.Monthly(r.Context(), chi.URLParam(r, "userID"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toReportResponse(rep))
	}
}

func onDemandReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req onDemandRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		p, err := parsePeriod(req.periodRequest)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rep, err := svc.OnDemand(r.Context(), chi.URLParam(r, "userID"), req.AnimalID, p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toReportResponse(rep))
	}
}

func getReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.GetByID(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

// downloadReportHandler devuelve el reporte como texto plano adjunto.
func downloadReportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.GetByID(r.Context(), chi.URLParam(r, "reportID"))
		if err != nil {
			writeError(w, err)
			return
		}
		name := fmt.Sprintf("%s-%s.txt", rep.Title, rep.GeneratedAt.Format(time.DateOnly))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "Report title: %s\n\n%s\n\nGenerated at: %s\n",
			rep.Title, rep.Content, rep.GeneratedAt.Format(time.DateTime))
	}
}

func parsePeriod(req periodRequest) (Period, error) {
	var p Period
	parse := func(raw string) (*time.Time, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t, nil
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", raw)
		}
		return &t, nil
	}
	var err error
	if p.Start, err = parse(req.Start); err != nil {
		return Period{}, err
	}
	if p.End, err = parse(req.End); err != nil {
		return Period{}, err
	}
	return p, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAnimalNotOwned):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, animals.ErrNotFound):
		http.Error(w, "animal not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toReportResponse(r Report) reportResponse {
	return reportResponse{
		ID:       r.ID,
		UserID:   r.UserID,
		AnimalID: r.AnimalID,
		Type:     r.Type,
		Title:    r.Title,
		Content:  r.Content,
		Summary: summaryResponse{
			AnimalCount:  r.Summary.AnimalCount,
			Scored:       r.Summary.Scored,
			Healthy:      r.Summary.Healthy,
			Attention:    r.Summary.Attention,
			Abnormal:     r.Summary.Abnormal,
			AverageScore: r.Summary.AverageScore,
		},
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		GeneratedAt: r.GeneratedAt,
		IsPaid:      r.IsPaid,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
