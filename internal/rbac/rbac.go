// Package rbac is the permission engine: a static role to capability table
// consulted by every service before it touches storage.
package rbac

import "cvportal/internal/apperr"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSuperUser Role = "super_user"
	RoleManager   Role = "manager"
	RoleUser      Role = "user"
)

// Roles lists the recognized roles in display order.
var Roles = []Role{RoleAdmin, RoleSuperUser, RoleManager, RoleUser}

func (r Role) Valid() bool {
	_, ok := policy[r]
	return ok
}

type Capability string

const (
	CanAccessUserProfiles   Capability = "canAccessUserProfiles"
	CanCreateUsers          Capability = "canCreateUsers"
	CanEditUsers            Capability = "canEditUsers"
	CanDeleteUsers          Capability = "canDeleteUsers"
	CanViewAllCVs           Capability = "canViewAllCVs"
	CanEditCVs              Capability = "canEditCVs"
	CanDeleteCVs            Capability = "canDeleteCVs"
	CanManagePositions      Capability = "canManagePositions"
	CanManageQualifications Capability = "canManageQualifications"
	CanDeletePositions      Capability = "canDeletePositions"
	CanDeleteQualifications Capability = "canDeleteQualifications"
	CanManageTenders        Capability = "canManageTenders"
	CanCaptureRecords       Capability = "canCaptureRecords"
)

var AllCapabilities = []Capability{
	CanAccessUserProfiles,
	CanCreateUsers,
	CanEditUsers,
	CanDeleteUsers,
	CanViewAllCVs,
	CanEditCVs,
	CanDeleteCVs,
	CanManagePositions,
	CanManageQualifications,
	CanDeletePositions,
	CanDeleteQualifications,
	CanManageTenders,
	CanCaptureRecords,
}

// policy is the only place grants are declared. super_user is admin minus the
// four delete capabilities.
var policy = map[Role][]Capability{
	RoleAdmin: AllCapabilities,
	RoleSuperUser: {
		CanAccessUserProfiles,
		CanCreateUsers,
		CanEditUsers,
		CanViewAllCVs,
		CanEditCVs,
		CanManagePositions,
		CanManageQualifications,
		CanManageTenders,
		CanCaptureRecords,
	},
	RoleManager: {
		CanViewAllCVs,
		CanManageTenders,
	},
	RoleUser: {
		CanCaptureRecords,
	},
}

// CapabilitySet has an entry for every capability; unknown roles get all false.
type CapabilitySet map[Capability]bool

func CapabilitiesFor(role Role) CapabilitySet {
	set := make(CapabilitySet, len(AllCapabilities))
	for _, c := range AllCapabilities {
		set[c] = false
	}
	for _, c := range policy[role] {
		set[c] = true
	}
	return set
}

func Can(role Role, c Capability) bool {
	for _, granted := range policy[role] {
		if granted == c {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	ID       uint
	Username string
	Role     Role
}

func (a Actor) Can(c Capability) bool { return Can(a.Role, c) }

// Require returns a ForbiddenError when the actor lacks c.
func Require(a Actor, c Capability) error {
	if a.Can(c) {
		return nil
	}
	return &apperr.ForbiddenError{Capability: string(c)}
}

// System is the actor used for seeding at startup.
var System = Actor{Username: "system", Role: RoleAdmin}
