// Package auth provides authentication middleware for the web application.
//
// The middleware validates the session cookie and redirects requests
// without a session to the login page. Static files, slide images, the
// public slider view and the login flow are reachable without a session.
// The current user is added to fiber.Locals for templates.
//
// Usage:
//
//	app.Use(authmiddleware.Middleware)
package auth
