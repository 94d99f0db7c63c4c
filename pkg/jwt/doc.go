// Package jwt authenticates API callers with HS256 bearer tokens built on
// github.com/golang-jwt/jwt/v5.
//
// A token names the user in its subject and the professional (practice owner)
// the user acts for in the "pid" claim. Middleware verifies the token and puts
// the Claims in the request context, and ProfessionalIDFromRequest feeds the
// subscription access middleware.
package jwt
