package model

import "github.com/google/uuid"

type Role string

const (
	RoleAgencyAdmin Role = "AGENCY_ADMIN"
	RoleAgencyStaff Role = "AGENCY_STAFF"
	RoleClientAdmin Role = "CLIENT_ADMIN"
	RoleClientUser  Role = "CLIENT_USER"
)

func (r Role) IsAgency() bool {
	return r == RoleAgencyAdmin || r == RoleAgencyStaff
}

func (r Role) IsClient() bool {
	return r == RoleClientAdmin || r == RoleClientUser
}

func (r Role) Valid() bool {
	return r.IsAgency() || r.IsClient()
}

// Actor is the authenticated user behind a request.
// Client actors always carry their tenant; agency actors carry uuid.Nil.
type Actor struct {
	UserID   uuid.UUID
	Role     Role
	TenantID uuid.UUID
}
