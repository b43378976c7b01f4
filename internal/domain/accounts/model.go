package accounts

import "time"

// Role define el rol del usuario en la consola.
// @Enum admin, user, viewer
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

// UserStatus define el estado de la cuenta.
// @Enum active, inactive, pending
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserPending  UserStatus = "pending"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive, UserPending:
		return true
	}
	return false
}

// User es una cuenta de la consola. Los contadores son agregados derivados:
// se recalculan después de cada mutación que toca animales o dispositivos.
type User struct {
	ID             string
	Username       string
	Email          string
	Phone          string
	FullName       string
	Role           Role
	Status         UserStatus
	OrganizationID string // vacío = sin organización

	AnimalCount       int
	DeviceCount       int
	PaidDeviceCount   int
	UnpaidDeviceCount int

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// OrganizationStatus
// @Enum active, inactive
type OrganizationStatus string

const (
	OrgActive   OrganizationStatus = "active"
	OrgInactive OrganizationStatus = "inactive"
)

// Organization agrupa usuarios. UserCount y AnimalCount son derivados.
type Organization struct {
	ID          string
	Name        string
	Description string
	Status      OrganizationStatus

	UserCount   int
	AnimalCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}
