package permissions

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrUnknownUser = errors.New("unknown user")
)

// RoleLookup resuelve el rol de un usuario. Lo implementa accounts.Service.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (role string, found bool, err error)
}

type Service struct {
	roles    RoleLookup
	allowAll bool
}

// NewService crea el chequeador. allowAll=true desactiva los chequeos (solo dev).
func NewService(roles RoleLookup, allowAll bool) *Service {
	return &Service{roles: roles, allowAll: allowAll}
}

// Check devuelve nil si el usuario tiene el permiso.
func (s *Service) Check(ctx context.Context, userID string, p Permission) error {
	if s.allowAll {
		return nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUnknownUser
	}
	role, found, err := s.roles.RoleOf(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrUnknownUser
	}
	if !Allowed(role, p) {
		return ErrForbidden
	}
	return nil
}

// Effective lista los permisos efectivos del usuario.
func (s *Service) Effective(ctx context.Context, userID string) ([]Permission, error) {
	if s.allowAll {
		return All(), nil
	}
	role, found, err := s.roles.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUnknownUser
	}
	return ForRole(role), nil
}
