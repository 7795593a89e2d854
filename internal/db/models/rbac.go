package models

import "time"

// Role is a named set of permissions. Users get a role directly, or through
// a group that is mapped to one.
type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"unique;size:100;not null"`
	Description string `gorm:"size:255"`
	// IsSystem roles are seeded at start and can not be removed.
	IsSystem  bool `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the gorm table name.
func (Role) TableName() string {
	return "roles"
}

// Permission is a single capability in resource.action form, e.g. "slider.manage".
type Permission struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"unique;size:100;not null"`
	Resource    string `gorm:"size:100;not null"`
	Action      string `gorm:"size:50;not null"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the gorm table name.
func (Permission) TableName() string {
	return "permissions"
}

// RolePermission joins roles and permissions.
type RolePermission struct {
	RoleID       uint       `gorm:"primaryKey;column:role_id"`
	PermissionID uint       `gorm:"primaryKey;column:permission_id"`
	Role         Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	Permission   Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the gorm table name.
func (RolePermission) TableName() string {
	return "role_permissions"
}

// GroupSource tells where a group comes from.
type GroupSource string

const (
	// GroupSourceLocal groups are maintained in this database.
	GroupSourceLocal GroupSource = "local"
	// GroupSourceOIDC groups come from an id token claim.
	GroupSourceOIDC GroupSource = "oidc"
	// GroupSourceLDAP groups come from a directory search.
	GroupSourceLDAP GroupSource = "ldap"
)

// Group collects users. External groups are synced on every login.
type Group struct {
	ID          uint        `gorm:"primaryKey"`
	Name        string      `gorm:"size:100;not null"`
	ExternalID  string      `gorm:"size:255;uniqueIndex:idx_source_external"`
	Source      GroupSource `gorm:"type:varchar(20);not null;uniqueIndex:idx_source_external"`
	Description string      `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the gorm table name.
func (Group) TableName() string {
	return "groups"
}

// GroupMapping grants the role to every member of the group.
type GroupMapping struct {
	ID        uint  `gorm:"primaryKey"`
	GroupID   uint  `gorm:"not null;uniqueIndex"`
	RoleID    uint  `gorm:"not null"`
	Group     Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Role      Role  `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the gorm table name.
func (GroupMapping) TableName() string {
	return "group_mappings"
}

// UserGroup is a group membership.
type UserGroup struct {
	UserID    uint64 `gorm:"primaryKey;column:user_id"`
	GroupID   uint   `gorm:"primaryKey;column:group_id"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Group     Group  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// TableName overrides the gorm table name.
func (UserGroup) TableName() string {
	return "user_groups"
}
