package auth

// Permission constants define the available permissions in the system.
// Roles are granted a subset of them; see daemon seeding for the defaults.
const (
	// PermDashboardView allows viewing the dashboard with the slider instances.
	PermDashboardView = "dashboard.view"

	// PermSliderManage allows adding, editing and deleting slides and
	// changing the settings of a slider.
	PermSliderManage = "slider.manage"

	// PermAdminSliders allows creating, copying and deleting slider instances.
	PermAdminSliders = "admin.sliders"
)

// Definition describes a permission for seeding.
type Definition struct {
	Name        string
	Resource    string
	Action      string
	Description string
}

// Definitions lists every permission known to the application.
var Definitions = []Definition{
	{PermDashboardView, "dashboard", "view", "View the dashboard"},
	{PermSliderManage, "slider", "manage", "Manage the slides and settings of a slider"},
	{PermAdminSliders, "admin", "sliders", "Create, copy and delete sliders"},
}
