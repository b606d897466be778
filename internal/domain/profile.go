package domain

// Profile 对应 profiles 表（mirror of the external auth platform's users）
type Profile struct {
	UserID         string `db:"user_id"` // UUID, PRIMARY KEY
	DisplayName    string `db:"display_name"`
	FirstName      string `db:"first_name"`
	LastName       string `db:"last_name"`
	Position       string `db:"position"` // role label: CEO/President/Developer/Member/Driver
	OrganizationID string `db:"organization_id"`
}

// BestName resolves the name shown on the public page: display_name when set,
// otherwise "first last", otherwise empty.
func (p Profile) BestName() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	}
	return ""
}
