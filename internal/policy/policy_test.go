package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive_PolicyTable(t *testing.T) {
	tests := []struct {
		role string
		want CapabilitySet
	}{
		{RoleCEO, CapabilitySet{CanApprove: true, CanGenerateQR: true, CanDeleteQR: true, CanViewQR: true, CanViewAllOrganizations: true}},
		{RoleDeveloper, CapabilitySet{CanApprove: true, CanGenerateQR: true, CanDeleteQR: true, CanViewQR: true, CanViewAllOrganizations: true}},
		{RolePresident, CapabilitySet{CanApprove: true, CanGenerateQR: true, CanDeleteQR: true, CanViewQR: true}},
		{RoleMember, CapabilitySet{CanGenerateQR: true, CanViewQR: true}},
		{RoleDriver, CapabilitySet{CanViewQR: true}},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.role))
		})
	}
}

func TestDerive_FailClosed(t *testing.T) {
	for _, role := range []string{"", "Admin", "ceo", "SuperUser", "member "} {
		assert.Equal(t, CapabilitySet{}, Derive(role), "role %q must map to the zero set", role)
	}
}

func TestCallerCanAccessOrganization(t *testing.T) {
	member := Caller{UserID: "u1", OrganizationID: "org-a", Role: RoleMember, Caps: Derive(RoleMember)}
	assert.True(t, member.CanAccessOrganization("org-a"))
	assert.False(t, member.CanAccessOrganization("org-b"))

	dev := Caller{UserID: "u2", OrganizationID: "org-a", Role: RoleDeveloper, Caps: Derive(RoleDeveloper)}
	assert.True(t, dev.CanAccessOrganization("org-b"))

	// Caller without an organization cannot match any org-scoped resource.
	orphan := Caller{UserID: "u3", Role: RoleMember, Caps: Derive(RoleMember)}
	assert.False(t, orphan.CanAccessOrganization("org-a"))
}
