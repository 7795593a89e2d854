// Package oidc handles the OpenID Connect login.
//
// GET /auth/oidc/login redirects to the provider with a one time state
// token. GET /auth/oidc/callback checks the state, exchanges the code,
// syncs the group claim into group memberships and starts a session that
// keeps the id token for the end session request made by logout.
package oidc
