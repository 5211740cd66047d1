package models

import "time"

// Role is the portal role a principal signs in with
type Role string

// Roles
const (
	RoleVictim Role = "victim"
	RolePolice Role = "police"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleVictim, RolePolice, RoleAdmin:
		return true
	}
	return false
}

// EmailDomain is used to build a login address for users registering without one
const EmailDomain = "casetrack.saps.gov.za"

// User holds a registered principal
type User struct {
	ID           string    `bson:"_id" json:"id"`
	FullName     string    `bson:"fullName" json:"fullName"`
	IDNumber     string    `bson:"idNumber" json:"-"`
	Phone        string    `bson:"phone" json:"phone"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	Anonymous    bool      `bson:"anonymous" json:"anonymous"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// DisplayName is the name shown to other participants
func (u User) DisplayName() string {
	if u.Anonymous || u.FullName == "" {
		return "Anonymous User"
	}
	return u.FullName
}

// Principal is the authenticated caller of a request
type Principal struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
}
