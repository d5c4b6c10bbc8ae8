package models

// Names of the roles every organization starts with.
const (
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

// RoleTemplate describes one entry of the bootstrap role set.
type RoleTemplate struct {
	Name        string
	Description string
}

// BootstrapRoles is created for every new organization, in this order.
var BootstrapRoles = []RoleTemplate{
	{Name: RoleOwner, Description: "Organization owner"},
	{Name: RoleAdmin, Description: "Organization admin"},
	{Name: RoleMember, Description: "Organization member"},
}

// Role is a named permission label scoped to one organization.
type Role struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex:idx_roles_org_name,priority:2" json:"name"`
	Description string `gorm:"type:varchar(255)" json:"description,omitempty"`
	OrgID       uint64 `gorm:"not null;uniqueIndex:idx_roles_org_name,priority:1" json:"org_id"`

	// Constraint only; never preloaded.
	Org *Organization `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE" json:"-"`
}
