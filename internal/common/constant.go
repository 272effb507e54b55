// Package common contains shared constants and sentinel errors used across
// gophgate components.
package common

// AuthenticationHeaderName is the gRPC metadata key carrying the bearer token
// during the presence handshake.
const AuthenticationHeaderName = "authentication"

// Known roles.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleSuperUser = "super-user"
)

// MessagePlaceholder replaces empty chat messages before they are relayed.
const MessagePlaceholder = "no-message!"
