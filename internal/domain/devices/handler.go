package devices

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
	r.Route("/devices", func(dr chi.Router) {
		dr.With(guard(permissions.DataManage)).Post("/", createDeviceHandler(svc))
		dr.With(guard(permissions.DataView)).Get("/", listDevicesHandler(svc))

		dr.With(guard(permissions.DataView)).Get("/{deviceID}", getDeviceHandler(svc))
		dr.With(guard(permissions.DataManage)).Patch("/{deviceID}", updateDeviceHandler(svc))
		dr.With(guard(permissions.DataManage)).Delete("/{deviceID}", deleteDeviceHandler(svc))
	})

	r.With(guard(permissions.DataView)).Get("/users/{userID}/devices", listUserDevicesHandler(svc))
}

type createDeviceRequest struct {
	Code               string      `json:"code"`
	UserID             string      `json:"user_id"` // opcional: por defecto el usuario autenticado
	AnimalID           string      `json:"animal_id"`
	IsActivated        bool        `json:"is_activated"`
	IsPaid             bool        `json:"is_paid"`
	PaymentType        PaymentType `json:"payment_type" enums:"monthly,yearly,lifetime"`
	BatteryLevel       int         `json:"battery_level"`
	BluetoothConnected bool        `json:"bluetooth_connected"`
}

type updateDeviceRequest struct {
	UserID             *string      `json:"user_id"`
	AnimalID           *string      `json:"animal_id"`
	IsActivated        *bool        `json:"is_activated"`
	IsPaid             *bool        `json:"is_paid"`
	PaymentType        *PaymentType `json:"payment_type"`
	BatteryLevel       *int         `json:"battery_level"`
	BluetoothConnected *bool        `json:"bluetooth_connected"`
}

type deviceResponse struct {
	ID                 string      `json:"id"`
	Code               string      `json:"code"`
	UserID             string      `json:"user_id"`
	AnimalID           string      `json:"animal_id,omitempty"`
	IsActivated        bool        `json:"is_activated"`
	IsPaid             bool        `json:"is_paid"`
	PaymentType        PaymentType `json:"payment_type,omitempty"`
	BatteryLevel       int         `json:"battery_level"`
	BluetoothConnected bool        `json:"bluetooth_connected"`
	LastSyncAt         *time.Time  `json:"last_sync_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func createDeviceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		var req createDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			userID = claims.UserID
		}

		d, err := svc.Create(r.Context(), CreateInput{
			Code:               req.Code,
			UserID:             userID,
			AnimalID:           req.AnimalID,
			IsActivated:        req.IsActivated,
			IsPaid:             req.IsPaid,
			PaymentType:        req.PaymentType,
			BatteryLevel:       req.BatteryLevel,
			BluetoothConnected: req.BluetoothConnected,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDeviceResponse(d))
	}
}

func listDevicesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.List(r.Context(), ListFilter{
			UserID:   strings.TrimSpace(q.Get("user_id")),
			AnimalID: strings.TrimSpace(q.Get("animal_id")),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeviceResponses(items))
	}
}

func listUserDevicesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), ListFilter{UserID: chi.URLParam(r, "userID")})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeviceResponses(items))
	}
}

func getDeviceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetByID(r.Context(), chi.URLParam(r, "deviceID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeviceResponse(d))
	}
}

func updateDeviceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateDeviceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		d, err := svc.Update(r.Context(), chi.URLParam(r, "deviceID"), UpdateInput{
			UserID:             req.UserID,
			AnimalID:           req.AnimalID,
			IsActivated:        req.IsActivated,
			IsPaid:             req.IsPaid,
			PaymentType:        req.PaymentType,
			BatteryLevel:       req.BatteryLevel,
			BluetoothConnected: req.BluetoothConnected,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDeviceResponse(d))
	}
}

func deleteDeviceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "deviceID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOwnerNotFound), errors.Is(err, ErrAnimalNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrCodeTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "device not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toDeviceResponses(items []Device) []deviceResponse {
	out := make([]deviceResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toDeviceResponse(d))
	}
	return out
}

func toDeviceResponse(d Device) deviceResponse {
	return deviceResponse{
		ID:                 d.ID,
		Code:               d.Code,
		UserID:             d.UserID,
		AnimalID:           d.AnimalID,
		IsActivated:        d.IsActivated,
		IsPaid:             d.IsPaid,
		PaymentType:        d.PaymentType,
		BatteryLevel:       d.BatteryLevel,
		BluetoothConnected: d.BluetoothConnected,
		LastSyncAt:         d.LastSyncAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
