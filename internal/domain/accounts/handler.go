package accounts

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

func RegisterRoutes(r chi.Router, svc *Service, perms *permissions.Service, guard middleware.Guard) {
	r.With(guard(permissions.DataView)).Get("/me", meHandler(svc, perms))

	r.Route("/users", func(ur chi.Router) {
		ur.With(guard(permissions.UsersManage)).Post("/", createUserHandler(svc))
		ur.With(guard(permissions.DataView)).Get("/", listUsersHandler(svc))

		ur.With(guard(permissions.DataView)).Get("/{userID}", getUserHandler(svc))
		ur.With(guard(permissions.UsersManage)).Patch("/{userID}", updateUserHandler(svc))
		ur.With(guard(permissions.UsersManage)).Delete("/{userID}", deleteUserHandler(svc))

		ur.With(guard(permissions.DataView)).Get("/{userID}/permissions", userPermissionsHandler(perms))
	})

	r.Route("/organizations", func(or chi.Router) {
		or.With(guard(permissions.UsersManage)).Post("/", createOrganizationHandler(svc))
		or.With(guard(permissions.DataView)).Get("/", listOrganizationsHandler(svc))

		or.With(guard(permissions.DataView)).Get("/{organizationID}", getOrganizationHandler(svc))
		or.With(guard(permissions.UsersManage)).Patch("/{organizationID}", updateOrganizationHandler(svc))
		or.With(guard(permissions.UsersManage)).Delete("/{organizationID}", deleteOrganizationHandler(svc))

		or.With(guard(permissions.DataView)).Get("/{organizationID}/users", listMembersHandler(svc))
	})
}

type createUserRequest struct {
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	FullName       string     `json:"full_name"`
	Role           Role       `json:"role" enums:"admin,user,viewer"`
	Status         UserStatus `json:"status" enums:"active,inactive,pending"`
	OrganizationID string     `json:"organization_id"`
}

type updateUserRequest struct {
	Email          *string     `json:"email"`
	Phone          *string     `json:"phone"`
	FullName       *string     `json:"full_name"`
	Role           *Role       `json:"role"`
	Status         *UserStatus `json:"status"`
	OrganizationID *string     `json:"organization_id"`
}

type userResponse struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	FullName          string     `json:"full_name"`
	Role              Role       `json:"role"`
	Status            UserStatus `json:"status"`
	OrganizationID    string     `json:"organization_id,omitempty"`
	AnimalCount       int        `json:"animal_count"`
	DeviceCount       int        `json:"device_count"`
	PaidDeviceCount   int        `json:"paid_device_count"`
	UnpaidDeviceCount int        `json:"unpaid_device_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
}

type meResponse struct {
	User        userResponse             `json:"user"`
	Permissions []permissions.Permission `json:"permissions"`
}

type organizationRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	Status      *OrganizationStatus `json:"status"`
}

type organizationResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Status      OrganizationStatus `json:"status"`
	UserCount   int                `json:"user_count"`
	AnimalCount int                `json:"animal_count"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func meHandler(svc *Service, perms *permissions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.GetClaims(r.Context())

		u, err := svc.GetUser(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		ps, err := perms.Effective(r.Context(), u.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		_ = svc.TouchLogin(r.Context(), u.ID)

		writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(u), Permissions: ps})
	}
}

func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		u, err := svc.CreateUser(r.Context(), CreateUserInput{
			Username:       req.Username,
			Email:          req.Email,
			Phone:          req.Phone,
			FullName:       req.FullName,
			Role:           req.Role,
			Status:         req.Status,
			OrganizationID: req.OrganizationID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.ListUsers(r.Context(), UserFilter{
			OrganizationID: strings.TrimSpace(q.Get("organization_id")),
			Role:           Role(strings.TrimSpace(q.Get("role"))),
			Status:         UserStatus(strings.TrimSpace(q.Get("status"))),
			Q:              strings.TrimSpace(q.Get("q")),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponses(items))
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.GetUser(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		u, err := svc.UpdateUser(r.Context(), chi.URLParam(r, "userID"), UpdateUserInput{
			Email:          req.Email,
			Phone:          req.Phone,
			FullName:       req.FullName,
			Role:           req.Role,
			Status:         req.Status,
			OrganizationID: req.OrganizationID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func deleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func userPermissionsHandler(perms *permissions.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := perms.Effective(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			if errors.Is(err, permissions.ErrUnknownUser) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

func createOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req organizationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		in := CreateOrganizationInput{}
		if req.Name != nil {
			in.Name = *req.Name
		}
		if req.Description != nil {
			in.Description = *req.Description
		}
		if req.Status != nil {
			in.Status = *req.Status
		}
		o, err := svc.CreateOrganization(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toOrganizationResponse(o))
	}
}

func listOrganizationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListOrganizations(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]organizationResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOrganizationResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.GetOrganization(r.Context(), chi.URLParam(r, "organizationID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrganizationResponse(o))
	}
}

func updateOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req organizationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		o, err := svc.UpdateOrganization(r.Context(), chi.URLParam(r, "organizationID"), UpdateOrganizationInput{
			Name:        req.Name,
			Description: req.Description,
			Status:      req.Status,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrganizationResponse(o))
	}
}

func deleteOrganizationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteOrganization(r.Context(), chi.URLParam(r, "organizationID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listMembersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := chi.URLParam(r, "organizationID")
		if _, err := svc.GetOrganization(r.Context(), orgID); err != nil {
			writeError(w, err)
			return
		}
		items, err := svc.ListUsers(r.Context(), UserFilter{OrganizationID: orgID})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponses(items))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, ErrOrganizationNotFound):
		http.Error(w, "organization not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toUserResponses(items []User) []userResponse {
	out := make([]userResponse, 0, len(items))
	for _, u := range items {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Phone:             u.Phone,
		FullName:          u.FullName,
		Role:              u.Role,
		Status:            u.Status,
		OrganizationID:    u.OrganizationID,
		AnimalCount:       u.AnimalCount,
		DeviceCount:       u.DeviceCount,
		PaidDeviceCount:   u.PaidDeviceCount,
		UnpaidDeviceCount: u.UnpaidDeviceCount,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
		LastLoginAt:       u.LastLoginAt,
	}
}

func toOrganizationResponse(o Organization) organizationResponse {
	return organizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		Status:      o.Status,
		UserCount:   o.UserCount,
		AnimalCount: o.AnimalCount,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
