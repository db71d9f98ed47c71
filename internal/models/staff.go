package models

import (
	"time"
)

// StaffUser is a moderation console account. Admin is the capability checked
// before any enforcement runs.
type StaffUser struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Name         string    `json:"name" bson:"name"`
	Admin        bool      `json:"admin" bson:"admin"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StaffAuthResponse struct {
	Token string    `json:"token"`
	User  StaffUser `json:"user"`
}

func (r *StaffLoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}
