// Package policy derives a caller's capability set from their role label.
// It is the single place role names are interpreted; handlers and services
// must consult the derived set and never re-check role strings inline.
package policy

// Role labels recognized by the registry.
const (
	RoleCEO       = "CEO"
	RolePresident = "President"
	RoleDeveloper = "Developer"
	RoleMember    = "Member"
	RoleDriver    = "Driver"
)

// CapabilitySet is derived per request and never persisted.
type CapabilitySet struct {
	CanApprove              bool `json:"can_approve"`
	CanGenerateQR           bool `json:"can_generate_qr"`
	CanDeleteQR             bool `json:"can_delete_qr"`
	CanViewQR               bool `json:"can_view_qr"`
	CanViewAllOrganizations bool `json:"can_view_all_organizations"`
}

// Derive maps a role label to its capability set. Unrecognized or empty
// roles map to the zero set (fail closed).
func Derive(role string) CapabilitySet {
	switch role {
	case RoleCEO, RoleDeveloper:
		return CapabilitySet{
			CanApprove:              true,
			CanGenerateQR:           true,
			CanDeleteQR:             true,
			CanViewQR:               true,
			CanViewAllOrganizations: true,
		}
	case RolePresident:
		return CapabilitySet{
			CanApprove:    true,
			CanGenerateQR: true,
			CanDeleteQR:   true,
			CanViewQR:     true,
		}
	case RoleMember:
		return CapabilitySet{
			CanGenerateQR: true,
			CanViewQR:     true,
		}
	case RoleDriver:
		return CapabilitySet{
			CanViewQR: true,
		}
	}
	return CapabilitySet{}
}

// Caller is the request-scoped identity computed once by the auth middleware
// and passed down explicitly. Nothing reads identity from ambient state.
type Caller struct {
	UserID         string
	OrganizationID string
	Role           string
	Caps           CapabilitySet
}

// CanAccessOrganization reports whether the caller may operate on resources
// of the given organization.
func (c Caller) CanAccessOrganization(orgID string) bool {
	if c.Caps.CanViewAllOrganizations {
		return true
	}
	return c.OrganizationID != "" && c.OrganizationID == orgID
}
