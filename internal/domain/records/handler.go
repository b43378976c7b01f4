package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, animalsSvc *animals.Service, guard middleware.Guard) {
	r.Route("/animals/{animalID}/records", func(rr chi.Router) {
		rr.With(guard(permissions.DataManage)).Post("/", createRecordHandler(svc, animalsSvc))
		rr.With(guard(permissions.DataView)).Get("/", listRecordsHandler(svc, animalsSvc))
	})

	r.Route("/records/{recordID}", func(rr chi.Router) {
		rr.With(guard(permissions.DataView)).Get("/", getRecordHandler(svc))
		rr.With(guard(permissions.DataManage)).Patch("/", updateRecordHandler(svc))
		rr.With(guard(permissions.DataManage)).Delete("/", deleteRecordHandler(svc))
	})
}

// createRecordRequest es el cuerpo para registrar un nuevo registro médico.
type createRecordRequest struct {
	Type         RecordType `json:"type" enums:"vaccination,physical_exam,blood_test,diagnosis,surgery,medication"`
	Date         string     `json:"date"` // RFC3339
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Veterinarian string     `json:"veterinarian"`
	Clinic       string     `json:"clinic"`
}

type updateRecordRequest struct {
	Type         *RecordType `json:"type"`
	Date         *string     `json:"date"` // RFC3339
	Title        *string     `json:"title"`
	Description  *string     `json:"description"`
	Veterinarian *string     `json:"veterinarian"`
	Clinic       *string     `json:"clinic"`
}

// recordResponse representa un registro médico devuelto por la API.
type recordResponse struct {
	ID           string     `json:"id"`
	AnimalID     string     `json:"animal_id"`
	Type         RecordType `json:"type"`
	Date         time.Time  `json:"date"`
	RecordedAt   time.Time  `json:"recorded_at"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Veterinarian string     `json:"veterinarian,omitempty"`
	Clinic       string     `json:"clinic,omitempty"`
	RecordedBy   string     `json:"recorded_by,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// createRecordHandler godoc
// @Summary Crear registro médico
// @Description Registra un evento clínico (vacuna, examen, diagnóstico...) para el animal indicado. Requiere permiso `data:manage`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags records
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path string true "ID del animal"
// @Param payload body createRecordRequest true "Datos del registro; date en formato RFC3339"
// @Success 201 {object} recordResponse
// @Failure 400 {string} string "invalid json / date inválido / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID}/records [post]
func createRecordHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		animalID := chi.URLParam(r, "animalID")
		if _, err := animalsSvc.GetByID(r.Context(), animalID); err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			http.Error(w, "date must be RFC3339", http.StatusBadRequest)
			return
		}

		rec, err := svc.Create(r.Context(), animalID, CreateInput{
			Type:         req.Type,
			Date:         t,
			Title:        req.Title,
			Description:  req.Description,
			Veterinarian: req.Veterinarian,
			Clinic:       req.Clinic,
			RecordedBy:   claims.UserID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

// listRecordsHandler godoc
// @Summary Listar registros médicos de un animal
// @Description Lista los registros médicos del animal, más recientes primero. Permite filtrar por tipos, rango de fechas y texto. Requiere permiso `data:view`.
// @Tags records
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path string true "ID del animal"
// @Param limit query int false "Máximo de registros a devolver (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos a incluir (ej: vaccination,blood_test)"
// @Param from query string false "Fecha mínima (RFC3339)"
// @Param to query string false "Fecha máxima (RFC3339)"
// @Param q query string false "Texto de búsqueda libre en título/descripción"
// @Success 200 {array} recordResponse
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "animal not found"
// @Failure 500 {string} string "internal error"
// @Router /animals/{animalID}/records [get]
func listRecordsHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		animalID := chi.URLParam(r, "animalID")
		if _, err := animalsSvc.GetByID(r.Context(), animalID); err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByAnimal(r.Context(), animalID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// updateRecordHandler godoc
// @Summary Actualizar registro médico
// @Description PATCH parcial de un registro médico. Requiere permiso `data:manage`.
// @Tags records
// @Accept json
// @Produce json
// @Param recordID path string true "ID del registro"
// @Param payload body updateRecordRequest true "Campos a modificar"
// @Success 200 {object} recordResponse
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "medical record not found"
// @Router /records/{recordID} [patch]
func updateRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			Type:         req.Type,
			Title:        req.Title,
			Description:  req.Description,
			Veterinarian: req.Veterinarian,
			Clinic:       req.Clinic,
		}
		if req.Date != nil {
			t, err := time.Parse(time.RFC3339, *req.Date)
			if err != nil {
				http.Error(w, "date must be RFC3339", http.StatusBadRequest)
				return
			}
			in.Date = &t
		}

		rec, err := svc.Update(r.Context(), chi.URLParam(r, "recordID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// deleteRecordHandler godoc
// @Summary Borrar registro médico
// @Tags records
// @Param recordID path string true "ID del registro"
// @Success 204
// @Failure 404 {string} string "medical record not found"
// @Router /records/{recordID} [delete]
func deleteRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "recordID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=vaccination,blood_test
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]RecordType, 0, len(parts))
		for _, p := range parts {
			t := RecordType(strings.TrimSpace(p))
			if t == "" {
				continue
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	// q
	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		filter.Query = v
	}

	return filter, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medical record not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRecordResponse(rec MedicalRecord) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		AnimalID:     rec.AnimalID,
		Type:         rec.Type,
		Date:         rec.Date,
		RecordedAt:   rec.RecordedAt,
		Title:        rec.Title,
		Description:  rec.Description,
		Veterinarian: rec.Veterinarian,
		Clinic:       rec.Clinic,
		RecordedBy:   rec.RecordedBy,
		UpdatedAt:    rec.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
