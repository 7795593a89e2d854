package login

import "errors"

// Errors shown on the login page.
var (
	ErrInvalidFormData     = errors.New("invalid form data")
	ErrNoAuthMethod        = errors.New("no authentication method available")
	ErrLocalAuthDisabled   = errors.New("local authentication is disabled")
	ErrLDAPAuthDisabled    = errors.New("ldap authentication is disabled")
	ErrInvalidAuthMethod   = errors.New("invalid authentication method")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInternalServerError = errors.New("internal server error")
)
