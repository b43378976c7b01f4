package stats

import (
	"encoding/json"
	"net/http"

	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, guard middleware.Guard) {
	r.With(guard(permissions.DataView)).Get("/stats", systemStatsHandler(svc))
}

type systemStatsResponse struct {
	TotalUsers         int `json:"total_users"`
	ActiveUsers        int `json:"active_users"`
	TotalAnimals       int `json:"total_animals"`
	TotalOrganizations int `json:"total_organizations"`
	TodaySyncCount     int `json:"today_sync_count"`
	FailedSyncCount    int `json:"failed_sync_count"`
}

// systemStatsHandler godoc
// @Summary Estadísticas del sistema
// @Tags stats
// @Produce json
// @Success 200 {object} systemStatsResponse
// @Router /stats [get]
func systemStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.System(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, systemStatsResponse{
			TotalUsers:         st.TotalUsers,
			ActiveUsers:        st.ActiveUsers,
			TotalAnimals:       st.TotalAnimals,
			TotalOrganizations: st.TotalOrganizations,
			TodaySyncCount:     st.TodaySyncCount,
			FailedSyncCount:    st.FailedSyncCount,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
