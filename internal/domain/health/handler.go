package health

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-health-monitor/internal/domain/animals"
	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, sim *Simulator, guard middleware.Guard) {
	view := guard(permissions.DataView)
	manage := guard(permissions.DataManage)

	r.With(view).Get("/animals/{animalID}/health", statusHandler(svc))
	r.With(view).Get("/animals/{animalID}/readings", readingsHandler(svc))
	r.With(manage).Post("/animals/{animalID}/readings", recordSampleHandler(sim))
	r.With(view).Get("/animals/{animalID}/readings/history", historyHandler(svc))
	r.With(view).Get("/animals/{animalID}/scores", scoresHandler(svc))
	r.With(manage).Post("/animals/{animalID}/scores", recordScoreHandler(sim))
	r.With(view).Get("/animals/{animalID}/alerts", alertsHandler(svc))
	r.With(manage).Post("/animals/{animalID}/alerts/read", markAllReadHandler(svc))

	r.With(manage).Post("/alerts/{alertID}/read", markReadHandler(svc))

	r.With(view).Get("/organizations/{organizationID}/health", organizationStatusHandler(svc))
	r.With(view).Get("/organizations/{organizationID}/alerts", organizationAlertsHandler(svc))

	r.With(guard(permissions.SystemManage)).Post("/simulator/tick", tickHandler(sim))
}

type readingResponse struct {
	ID        string    `json:"id"`
	AnimalID  string    `json:"animal_id"`
	Metric    Metric    `json:"metric"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"timestamp"`
}

type scoreResponse struct {
	ID          string    `json:"id"`
	AnimalID    string    `json:"animal_id"`
	Overall     float64   `json:"overall"`
	HeartRate   float64   `json:"heart_rate"`
	Temperature float64   `json:"temperature"`
	Activity    float64   `json:"activity"`
	Sleep       float64   `json:"sleep"`
	Stress      float64   `json:"stress"`
	Timestamp   time.Time `json:"timestamp"`
}

type alertResponse struct {
	ID        string    `json:"id"`
	AnimalID  string    `json:"animal_id"`
	Category  Category  `json:"category"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type statusResponse struct {
	AnimalID     string         `json:"animal_id"`
	AnimalName   string         `json:"animal_name"`
	Species      string         `json:"species"`
	HealthScore  float64        `json:"health_score"`
	Score        *scoreResponse `json:"score,omitempty"`
	HeartRate    *float64       `json:"heart_rate,omitempty"`
	Temperature  *float64       `json:"temperature,omitempty"`
	Activity     *float64       `json:"activity,omitempty"`
	HRV          *float64       `json:"hrv,omitempty"`
	Mood         string         `json:"mood,omitempty"`
	UnreadAlerts int            `json:"unread_alerts"`
	LastUpdate   *time.Time     `json:"last_update,omitempty"`
}

type sampleRequest struct {
	HeartRate   *float64 `json:"heart_rate"`
	Temperature *float64 `json:"temperature"`
	Activity    *float64 `json:"activity"`
	HRV         *float64 `json:"hrv"`
	Sleep       *float64 `json:"sleep"`
	Stress      *float64 `json:"stress"`
	Mood        *int     `json:"mood"`
}

type scoreRequest struct {
	Overall     *float64 `json:"overall"`
	HeartRate   *float64 `json:"heart_rate"`
	Temperature *float64 `json:"temperature"`
	Activity    *float64 `json:"activity"`
	Sleep       *float64 `json:"sleep"`
	Stress      *float64 `json:"stress"`
}

type recordResultResponse struct {
	Score  *scoreResponse  `json:"score,omitempty"`
	Alerts []alertResponse `json:"alerts"`
}

type tickResponse struct {
	Animals  int `json:"animals"`
	Readings int `json:"readings"`
	Alerts   int `json:"alerts"`
}

// statusHandler godoc
// @Summary Estado de salud del animal
// @Description Último score, última lectura por métrica y alertas sin leer. Requiere permiso `data:view`.
// @Tags health
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path string true "ID del animal"
// @Success 200 {object} statusResponse
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID}/health [get]
func statusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, found, err := svc.Status(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toStatusResponse(st))
	}
}

// readingsHandler godoc
// @Summary Lecturas del animal en una ventana
// @Description Lecturas con timestamp >= now-hours, ascendente. Sin `metric` devuelve todas las métricas.
// @Tags health
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param metric query string false "heart_rate, temperature, activity, sleep, stress, hrv, mood"
// @Param hours query number false "Ventana en horas (por defecto 24)"
// @Success 200 {array} readingResponse
// @Failure 400 {string} string "metric/hours inválidos"
// @Router /animals/{animalID}/readings [get]
func readingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseHours(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		metric := Metric(strings.TrimSpace(r.URL.Query().Get("metric")))

		items, err := svc.Readings(r.Context(), chi.URLParam(r, "animalID"), metric, window)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReadingResponses(items))
	}
}

func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.History(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReadingResponses(items))
	}
}

func scoresHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseHours(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		items, err := svc.Scores(r.Context(), chi.URLParam(r, "animalID"), window)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]scoreResponse, 0, len(items))
		for _, s := range items {
			out = append(out, toScoreResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// recordSampleHandler godoc
// @Summary Cargar lecturas manuales
// @Description Guarda los valores enviados como lecturas del animal y evalúa las reglas de alerta. Requiere permiso `data:manage`.
// @Tags health
// @Accept json
// @Produce json
// @Param animalID path string true "ID del animal"
// @Param payload body sampleRequest true "Valores (todos opcionales, al menos uno)"
// @Success 201 {object} recordResultResponse
// @Failure 400 {string} string "invalid json / sin valores"
// @Failure 404 {string} string "animal not found"
// @Router /animals/{animalID}/readings [post]
func recordSampleHandler(sim *Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sampleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		alerts, err := sim.RecordSample(r.Context(), chi.URLParam(r, "animalID"), ManualSample{
			HeartRate:   req.HeartRate,
			Temperature: req.Temperature,
			Activity:    req.Activity,
			HRV:         req.HRV,
			Sleep:       req.Sleep,
			Stress:      req.Stress,
			Mood:        req.Mood,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, recordResultResponse{Alerts: toAlertResponses(alerts)})
	}
}

func recordScoreHandler(sim *Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Overall == nil {
			http.Error(w, "overall is required", http.StatusBadRequest)
			return
		}
		sc, alerts, err := sim.RecordScore(r.Context(), chi.URLParam(r, "animalID"), ScoreInput{
			Overall:     *req.Overall,
			HeartRate:   req.HeartRate,
			Temperature: req.Temperature,
			Activity:    req.Activity,
			Sleep:       req.Sleep,
			Stress:      req.Stress,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		out := toScoreResponse(sc)
		writeJSON(w, http.StatusCreated, recordResultResponse{Score: &out, Alerts: toAlertResponses(alerts)})
	}
}

func alertsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unread := r.URL.Query().Get("unread") == "true"
		items, err := svc.Alerts(r.Context(), chi.URLParam(r, "animalID"), unread)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponses(items))
	}
}

func markAllReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.MarkAllRead(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"marked": n})
	}
}

func markReadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.MarkAlertRead(r.Context(), chi.URLParam(r, "alertID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponse(a))
	}
}

func organizationStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.OrganizationStatus(r.Context(), chi.URLParam(r, "organizationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]statusResponse, 0, len(items))
		for _, st := range items {
			out = append(out, toStatusResponse(st))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func organizationAlertsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unread := r.URL.Query().Get("unread") == "true"
		items, err := svc.OrganizationAlerts(r.Context(), chi.URLParam(r, "organizationID"), unread)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponses(items))
	}
}

// tickHandler fuerza una pasada del simulador (además del cron).
func tickHandler(sim *Simulator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sim.Tick(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tickResponse{Animals: res.Animals, Readings: res.Readings, Alerts: res.Alerts})
	}
}

// maxWindowHours es el máximo que entra en un time.Duration.
var maxWindowHours = float64(math.MaxInt64) / float64(time.Hour)

func parseHours(r *http.Request) (time.Duration, error) {
	v := strings.TrimSpace(r.URL.Query().Get("hours"))
	if v == "" {
		return DefaultWindow, nil
	}
	h, err := strconv.ParseFloat(v, 64)
	// NaN falla todas las comparaciones; Inf y valores enormes desbordan Duration
	if err != nil || math.IsNaN(h) || h <= 0 || h >= maxWindowHours {
		return 0, errors.New("hours must be a positive number")
	}
	return time.Duration(h * float64(time.Hour)), nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoValues):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, animals.ErrNotFound):
		http.Error(w, "animal not found", http.StatusNotFound)
	case errors.Is(err, ErrAlertNotFound):
		http.Error(w, "alert not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toReadingResponses(items []Reading) []readingResponse {
	out := make([]readingResponse, 0, len(items))
	for _, rd := range items {
		out = append(out, readingResponse{
			ID:        rd.ID,
			AnimalID:  rd.AnimalID,
			Metric:    rd.Metric,
			Value:     rd.Value,
			Unit:      rd.Unit,
			Timestamp: rd.Timestamp,
		})
	}
	return out
}

func toScoreResponse(s HealthScore) scoreResponse {
	return scoreResponse{
		ID:          s.ID,
		AnimalID:    s.AnimalID,
		Overall:     s.Overall,
		HeartRate:   s.HeartRate,
		Temperature: s.Temperature,
		Activity:    s.Activity,
		Sleep:       s.Sleep,
		Stress:      s.Stress,
		Timestamp:   s.Timestamp,
	}
}

func toAlertResponses(items []Alert) []alertResponse {
	out := make([]alertResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAlertResponse(a))
	}
	return out
}

func toAlertResponse(a Alert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		AnimalID:  a.AnimalID,
		Category:  a.Category,
		Severity:  a.Severity,
		Message:   a.Message,
		Value:     a.Value,
		Timestamp: a.Timestamp,
		Read:      a.Read,
	}
}

func toStatusResponse(st AnimalStatus) statusResponse {
	out := statusResponse{
		AnimalID:     st.AnimalID,
		AnimalName:   st.AnimalName,
		Species:      st.Species,
		HeartRate:    st.HeartRate,
		Temperature:  st.Temperature,
		Activity:     st.Activity,
		HRV:          st.HRV,
		Mood:         st.Mood,
		UnreadAlerts: st.UnreadAlerts,
	}
	if st.Score != nil {
		sc := toScoreResponse(*st.Score)
		out.Score = &sc
		out.HealthScore = st.Score.Overall
		t := st.LastUpdate
		out.LastUpdate = &t
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
