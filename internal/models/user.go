// Package models defines data structures for the estatehub marketplace.
package models

// Role is the permission level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// User is an identity record. Email is unique across seed and registered users.
type User struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Email  string  `json:"email" yaml:"email"`
	Avatar *string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Role   Role    `json:"role" yaml:"role"`
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	if u.Avatar != nil {
		avatar := *u.Avatar
		u.Avatar = &avatar
	}
	return u
}
