package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, guard middleware.Guard) {
	r.Route("/animals", func(ar chi.Router) {
		ar.With(guard(permissions.DataManage)).Post("/", createAnimalHandler(svc))
		ar.With(guard(permissions.DataView)).Get("/", listAnimalsHandler(svc))

		ar.With(guard(permissions.DataView)).Get("/{animalID}", getAnimalHandler(svc))
		ar.With(guard(permissions.DataManage)).Patch("/{animalID}", updateAnimalHandler(svc))
		ar.With(guard(permissions.DataManage)).Delete("/{animalID}", deleteAnimalHandler(svc))
	})

	// Vistas por dueño / organización
	r.With(guard(permissions.DataView)).Get("/users/{userID}/animals", listByOwnerHandler(svc))
	r.With(guard(permissions.DataView)).Get("/organizations/{organizationID}/animals", listByOrganizationHandler(svc))
}

type createAnimalRequest struct {
	OwnerUserID string  `json:"owner_user_id"` // opcional: por defecto el usuario autenticado
	Name        string  `json:"name"`
	Species     string  `json:"species"`
	Sex         string  `json:"sex"`
	WeightKg    float64 `json:"weight_kg"`
	AgeYears    int     `json:"age_years"`
	BirthDate   string  `json:"birth_date"` // YYYY-MM-DD opcional
	DeviceID    string  `json:"device_id"`
}

type animalResponse struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"owner_user_id"`
	Name        string     `json:"name"`
	Species     Species    `json:"species"`
	Sex         Sex        `json:"sex"`
	WeightKg    float64    `json:"weight_kg"`
	AgeYears    int        `json:"age_years"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	DeviceID    string     `json:"device_id,omitempty"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type updateAnimalRequest struct {
	OwnerUserID *string  `json:"owner_user_id"`
	Name        *string  `json:"name"`
	Species     *string  `json:"species"`
	Sex         *string  `json:"sex"`
	WeightKg    *float64 `json:"weight_kg"`
	AgeYears    *int     `json:"age_years"`
	DeviceID    *string  `json:"device_id"`
}

func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		owner := strings.TrimSpace(req.OwnerUserID)
		if owner == "" {
			owner = claims.UserID
		}

		a, err := svc.Create(r.Context(), CreateInput{
			OwnerUserID: owner,
			Name:        req.Name,
			Species:     req.Species,
			Sex:         req.Sex,
			WeightKg:    req.WeightKg,
			AgeYears:    req.AgeYears,
			BirthDate:   bd,
			DeviceID:    req.DeviceID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			items []Animal
			err   error
		)
		q := r.URL.Query()
		switch {
		case strings.TrimSpace(q.Get("owner_user_id")) != "":
			items, err = svc.ListByOwner(r.Context(), strings.TrimSpace(q.Get("owner_user_id")))
		case strings.TrimSpace(q.Get("organization_id")) != "":
			items, err = svc.ListByOrganization(r.Context(), strings.TrimSpace(q.Get("organization_id")))
		default:
			items, err = svc.ListAll(r.Context())
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponses(items))
	}
}

func listByOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByOwner(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponses(items))
	}
}

func listByOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByOrganization(r.Context(), chi.URLParam(r, "organizationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponses(items))
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animalID := chi.URLParam(r, "animalID")

		// Para soportar birth_date: null, decodificamos primero a map y detectamos presencia.
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var req updateAnimalRequest
		b, _ := json.Marshal(raw)
		if err := json.Unmarshal(b, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd := PatchBirthDate{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				t, err := time.Parse("2006-01-02", s)
				if err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &t
			}
		}

		updated, err := svc.Update(r.Context(), animalID, UpdateInput{
			OwnerUserID: req.OwnerUserID,
			Name:        req.Name,
			Species:     req.Species,
			Sex:         req.Sex,
			WeightKg:    req.WeightKg,
			AgeYears:    req.AgeYears,
			BirthDate:   bd,
			DeviceID:    req.DeviceID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "animalID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOwnerNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "animal not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAnimalResponses(items []Animal) []animalResponse {
	out := make([]animalResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAnimalResponse(a))
	}
	return out
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:          a.ID,
		OwnerUserID: a.OwnerUserID,
		Name:        a.Name,
		Species:     a.Species,
		Sex:         a.Sex,
		WeightKg:    a.WeightKg,
		AgeYears:    a.AgeYears,
		BirthDate:   a.BirthDate,
		DeviceID:    a.DeviceID,
		LastSyncAt:  a.LastSyncAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
