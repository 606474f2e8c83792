package identity

import (
	"fmt"

	"github.com/sgi/backend/internal/domain/shared"
)

// Role is the closed set of positions an actor can hold.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDirectiva  Role = "directiva"
	RoleRespSector Role = "resp_sector"
	RoleRespZona   Role = "resp_zona"
	RoleRespGrupo  Role = "resp_grupo"
	RoleMember     Role = "miembro"
)

// AllRoles lists every role, highest first.
var AllRoles = []Role{
	RoleAdmin,
	RoleDirectiva,
	RoleRespSector,
	RoleRespZona,
	RoleRespGrupo,
	RoleMember,
}

// ParseRole validates a stored or submitted role value
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", shared.NewValidationError("role", fmt.Sprintf("Unknown role %q", s))
	}
	return r, nil
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDirectiva, RoleRespSector, RoleRespZona, RoleRespGrupo, RoleMember:
		return true
	}
	return false
}

// IsBoard reports whether the role carries organization-wide authority.
func (r Role) IsBoard() bool {
	switch r {
	case RoleAdmin, RoleDirectiva:
		return true
	case RoleRespSector, RoleRespZona, RoleRespGrupo, RoleMember:
		return false
	}
	return false
}

// IsResponsibleOrAbove reports whether the role may act on behalf of other
// members: group responsibles and everything above them.
func (r Role) IsResponsibleOrAbove() bool {
	switch r {
	case RoleAdmin, RoleDirectiva, RoleRespSector, RoleRespZona, RoleRespGrupo:
		return true
	case RoleMember:
		return false
	}
	return false
}

// Label is the display name used in notifications
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleDirectiva:
		return "Directiva"
	case RoleRespSector:
		return "Responsable sector / región"
	case RoleRespZona:
		return "Responsable zona"
	case RoleRespGrupo:
		return "Responsable grupo"
	case RoleMember:
		return "Miembro"
	}
	return string(r)
}
