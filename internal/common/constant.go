// Package common contains shared constants and sentinel errors used across
// Memoria components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer session token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token inside the Authorization header.
const BearerPrefix = "Bearer "
