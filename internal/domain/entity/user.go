package entity

import "time"

// Actor is the identity performing an operation
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Roles []Role `json:"roles"`
}

// HasRole returns true if the actor holds the role
func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole returns true if the actor holds at least one of the roles
func (a Actor) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}
	return false
}

// User is a directory entry used to resolve actors and notification recipients
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Roles      []Role    `json:"roles"`
	LarkOpenID string    `json:"lark_open_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Actor returns the acting identity of the user
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Roles: append([]Role(nil), u.Roles...)}
}

// CostCenter is reference data selectable on goods requests and payment rows
type CostCenter struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"name_en,omitempty"`
}
