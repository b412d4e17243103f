package models

import "time"

// Role is the closed set of account roles. It travels as an integer on the wire.
type Role int

const (
	RoleAdmin    Role = 1
	RoleStandard Role = 2
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStandard
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleStandard:
		return "standard"
	default:
		return "unknown"
	}
}

type User struct {
	ID           int64     `json:"id" db:"id" bson:"_id"`
	Name         string    `json:"name" db:"name" bson:"name"`
	Email        string    `json:"email" db:"email" bson:"email"`
	PhoneNumber  *string   `json:"phone_number,omitempty" db:"phone_number" bson:"phone_number,omitempty"`
	PasswordHash string    `json:"-" db:"password_hash" bson:"password_hash"`
	Role         Role      `json:"role" db:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// UserPatch carries a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PhoneNumber == nil
}
