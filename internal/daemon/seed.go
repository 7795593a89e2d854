package daemon

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoSlider/GoSlider/internal/auth"
	"github.com/GoSlider/GoSlider/internal/config"
	"github.com/GoSlider/GoSlider/internal/db/models"
)

// Seeded role names.
const (
	RoleAdministrator = "Administrator"
	RoleManager       = "Manager"
	RoleViewer        = "Viewer"

	// EnvAdminPassword sets the password of the first admin account.
	EnvAdminPassword = "GO_SLIDER_ADMIN_PASSWORD"

	defaultAdminPassword = "changeme"
)

// systemRoles maps the seeded roles to their permissions.
var systemRoles = []struct {
	Name        string
	Description string
	Permissions []string
}{
	{
		Name:        RoleAdministrator,
		Description: "Creates, copies and deletes sliders and manages their slides",
		Permissions: []string{auth.PermDashboardView, auth.PermSliderManage, auth.PermAdminSliders},
	},
	{
		Name:        RoleManager,
		Description: "Manages the slides and settings of existing sliders",
		Permissions: []string{auth.PermDashboardView, auth.PermSliderManage},
	},
	{
		Name:        RoleViewer,
		Description: "Lists the sliders",
		Permissions: []string{auth.PermDashboardView},
	},
}

// Seed creates the permissions, the system roles and, on an empty user
// table, the admin account. It is safe to run on every start.
func Seed(_ *config.Config, db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		perms := make(map[string]uint, len(auth.Definitions))

		for _, d := range auth.Definitions {
			p := models.Permission{
				Name:        d.Name,
				Resource:    d.Resource,
				Action:      d.Action,
				Description: d.Description,
			}

			if err := tx.Where(models.Permission{Name: d.Name}).FirstOrCreate(&p).Error; err != nil {
				return err
			}

			perms[d.Name] = p.ID
		}

		for _, r := range systemRoles {
			role := models.Role{Name: r.Name, Description: r.Description, IsSystem: true}

			if err := tx.Where(models.Role{Name: r.Name}).FirstOrCreate(&role).Error; err != nil {
				return err
			}

			for _, name := range r.Permissions {
				rp := models.RolePermission{RoleID: role.ID, PermissionID: perms[name]}

				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rp).Error; err != nil {
					return err
				}
			}
		}

		return seedAdmin(tx)
	})
}

func seedAdmin(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	password := os.Getenv(EnvAdminPassword)
	if password == "" {
		password = defaultAdminPassword

		log.Warn().Msg("created user admin with the default password, change it after the first login")
	}

	user, err := auth.NewLocalProvider(tx).CreateUser("admin", "admin@localhost", password, "", "", 0)
	if err != nil && !errors.Is(err, auth.ErrUserNameOrEmailExists) {
		return err
	}

	if user == nil {
		return nil
	}

	return auth.NewService(tx).AssignRole(user.ID, RoleAdministrator)
}
