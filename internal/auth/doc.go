// Package auth provides authentication and authorization functionality for the application.
//
// Users log in through one of three sources:
//   - Local database authentication with Argon2id password hashing
//   - LDAP/Active Directory authentication with group synchronization
//   - OpenID Connect (OIDC) authentication with external identity providers
//
// # Authorization
//
// Users have a direct role, and external groups may be mapped to further
// roles. Roles carry permissions:
//   - dashboard.view: see the list of sliders
//   - slider.manage: edit the slides and settings of a slider
//   - admin.sliders: create, copy and delete sliders
//
// Service.HasManageCapability decides whether the manage button and the
// empty slider placeholder are shown on a rendered block.
//
// # Middleware
//
// RequirePermission protects routes. AddPermissionsToLocals exposes the
// permissions of the current user to templates.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Get("/slider/:id/manage",
//	    auth.RequirePermission(authService, auth.PermSliderManage),
//	    handler,
//	)
//
//	// LDAP authentication
//	ldapProvider, err := auth.NewLDAPProvider(ldapConfig, db)
//	err = ldapProvider.ApplyGroupRoles(authService)
//	user, groups, err := ldapProvider.Authenticate(username, password)
//	err = authService.SyncUserGroups(user.ID, groups, models.GroupSourceLDAP)
package auth
