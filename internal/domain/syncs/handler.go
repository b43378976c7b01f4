package syncs

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, guard middleware.Guard) {
	r.With(guard(permissions.DataView)).Get("/users/{userID}/syncs", listUserSyncsHandler(svc))
	r.With(guard(permissions.DataSync)).Post("/users/{userID}/syncs", triggerSyncHandler(svc))

	r.Route("/syncs", func(sr chi.Router) {
		sr.With(guard(permissions.DataView)).Get("/", listSyncsHandler(svc))
		sr.With(guard(permissions.DataView)).Get("/{syncID}", getSyncHandler(svc))
		sr.With(guard(permissions.DataSync)).Post("/{syncID}/cancel", cancelSyncHandler(svc))
	})
}

type triggerSyncRequest struct {
	Type      Type      `json:"sync_type" enums:"full,incremental,manual"`
	Direction Direction `json:"sync_direction" enums:"upload,download"`
}

type syncResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Type         Type       `json:"sync_type"`
	Direction    Direction  `json:"sync_direction"`
	Status       Status     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	RecordCount  int        `json:"record_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Attempts     int        `json:"attempts"`
}

// triggerSyncHandler godoc
// @Summary Disparar sincronización
// @Description Crea un registro pending; se resuelve en segundo plano (success/failed).
// @Tags syncs
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param body body triggerSyncRequest true "Tipo y dirección"
// @Success 202 {object} syncResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "user not found"
// @Router /users/{userID}/syncs [post]
func triggerSyncHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req triggerSyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Direction == "" {
			req.Direction = DirectionUpload
		}
		rec, err := svc.Trigger(r.Context(), chi.URLParam(r, "userID"), req.Type, req.Direction)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, toSyncResponse(rec))
	}
}

func listUserSyncsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByUser(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSyncResponses(items))
	}
}

func listSyncsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAll(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSyncResponses(items))
	}
}

func getSyncHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "syncID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSyncResponse(rec))
	}
}

func cancelSyncHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Cancel(r.Context(), chi.URLParam(r, "syncID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSyncResponse(rec))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotCancelable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "sync record not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toSyncResponses(items []Record) []syncResponse {
	out := make([]syncResponse, 0, len(items))
	for _, rec := range items {
		out = append(out, toSyncResponse(rec))
	}
	return out
}

func toSyncResponse(rec Record) syncResponse {
	return syncResponse{
		ID:           rec.ID,
		UserID:       rec.UserID,
		Type:         rec.Type,
		Direction:    rec.Direction,
		Status:       rec.Status,
		StartTime:    rec.StartTime,
		EndTime:      rec.EndTime,
		RecordCount:  rec.RecordCount,
		ErrorMessage: rec.ErrorMessage,
		Attempts:     rec.Attempts,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
