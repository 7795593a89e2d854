package auth_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Group{},
		&models.GroupMapping{},
		&models.UserGroup{},
		&models.Slider{},
	))

	return db
}

// grant creates a role holding perms.
func grant(t *testing.T, db *gorm.DB, roleName string, perms ...string) models.Role {
	t.Helper()

	role := models.Role{Name: roleName}
	require.NoError(t, db.Create(&role).Error)

	for _, name := range perms {
		p := models.Permission{Name: name, Resource: "r", Action: "a"}
		require.NoError(t, db.Where("name = ?", name).FirstOrCreate(&p).Error)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
	}

	return role
}

func TestHasPermission_DirectRole(t *testing.T) {
	db := setupTestDB(t)
	svc := auth.NewService(db)

	editor := grant(t, db, "editor", auth.PermDashboardView, auth.PermSliderManage)

	user, err := auth.NewLocalProvider(db).CreateUser("ed", "ed@example.com", "pw", "", "", editor.ID)
	require.NoError(t, err)

	has, err := svc.HasPermission(user.ID, auth.PermSliderManage)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasPermission(user.ID, auth.PermAdminSliders)
	require.NoError(t, err)
	assert.False(t, has)

	perms, err := svc.GetUserPermissions(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{auth.PermDashboardView, auth.PermSliderManage}, perms)
}

func TestHasPermission_GroupMapping(t *testing.T) {
	db := setupTestDB(t)
	svc := auth.NewService(db)

	admins := grant(t, db, "admins", auth.PermAdminSliders)

	user := models.User{Username: "dir", Email: "dir@example.com", AuthSource: models.AuthSourceLDAP, Active: true}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, svc.SyncUserGroups(user.ID, []string{"cn=admins", "cn=staff"}, models.GroupSourceLDAP))

	var group models.Group
	require.NoError(t, db.Where("external_id = ?", "cn=admins").First(&group).Error)
	require.NoError(t, db.Create(&models.GroupMapping{GroupID: group.ID, RoleID: admins.ID}).Error)

	has, err := svc.HasPermission(user.ID, auth.PermAdminSliders)
	require.NoError(t, err)
	assert.True(t, has)

	// a later login without the group drops the membership
	require.NoError(t, svc.SyncUserGroups(user.ID, []string{"cn=staff"}, models.GroupSourceLDAP))

	has, err = svc.HasPermission(user.ID, auth.PermAdminSliders)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasManageCapability(t *testing.T) {
	db := setupTestDB(t)
	svc := auth.NewService(db)

	manager := grant(t, db, "manager", auth.PermSliderManage)
	viewer := grant(t, db, "viewer", auth.PermDashboardView)

	lp := auth.NewLocalProvider(db)

	m, err := lp.CreateUser("m", "m@example.com", "pw", "", "", manager.ID)
	require.NoError(t, err)

	v, err := lp.CreateUser("v", "v@example.com", "pw", "", "", viewer.ID)
	require.NoError(t, err)

	s := models.Slider{Name: "front"}
	require.NoError(t, db.Create(&s).Error)

	can, err := svc.HasManageCapability(m.ID, s.ID)
	require.NoError(t, err)
	assert.True(t, can)

	can, err = svc.HasManageCapability(v.ID, s.ID)
	require.NoError(t, err)
	assert.False(t, can)

	can, err = svc.HasManageCapability(m.ID, s.ID+100)
	require.NoError(t, err)
	assert.False(t, can)
}

func TestAssignRole(t *testing.T) {
	db := setupTestDB(t)
	svc := auth.NewService(db)

	admin := grant(t, db, "Administrator", auth.PermAdminSliders)

	user, err := auth.NewLocalProvider(db).CreateUser("a", "a@example.com", "pw", "", "", 0)
	require.NoError(t, err)

	require.NoError(t, svc.AssignRole(user.ID, "Administrator"))
	require.ErrorIs(t, svc.AssignRole(user.ID, "nope"), auth.ErrRoleNotFound)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	assert.Equal(t, admin.ID, got.RoleID)
}

func TestLocalProvider(t *testing.T) {
	db := setupTestDB(t)
	lp := auth.NewLocalProvider(db)

	_, err := lp.CreateUser("alice", "alice@example.com", "secret", "Alice", "Doe", 0)
	require.NoError(t, err)

	_, err = lp.CreateUser("alice", "other@example.com", "secret", "", "", 0)
	require.ErrorIs(t, err, auth.ErrUserNameOrEmailExists)

	u, err := lp.Authenticate("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName)

	_, err = lp.Authenticate("alice", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidPassword)

	_, err = lp.Authenticate("nobody", "secret")
	require.ErrorIs(t, err, auth.ErrUserNotFound)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Update("active", false).Error)

	_, err = lp.Authenticate("alice", "secret")
	require.ErrorIs(t, err, auth.ErrUserAccountDisabled)

	got, err := lp.GetUserByID(u.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = lp.GetUserByID(999)
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestMapGroup(t *testing.T) {
	db := setupTestDB(t)
	svc := auth.NewService(db)

	grant(t, db, "viewers", auth.PermDashboardView)
	grant(t, db, "managers", auth.PermSliderManage)

	// mapped before any member logged in
	require.NoError(t, svc.MapGroup(models.GroupSourceOIDC, "editors", "viewers"))
	require.NoError(t, svc.MapGroup(models.GroupSourceOIDC, "editors", "managers"))
	require.ErrorIs(t, svc.MapGroup(models.GroupSourceOIDC, "editors", "missing"), auth.ErrRoleNotFound)

	var mappings int64
	require.NoError(t, db.Model(&models.GroupMapping{}).Count(&mappings).Error)
	assert.Equal(t, int64(1), mappings)

	user := models.User{Username: "sso", Email: "sso@example.com", AuthSource: models.AuthSourceOIDC, Active: true}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, svc.SyncUserGroups(user.ID, []string{"editors"}, models.GroupSourceOIDC))

	has, err := svc.HasPermission(user.ID, auth.PermSliderManage)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasPermission(user.ID, auth.PermDashboardView)
	require.NoError(t, err)
	assert.False(t, has)
}
