package auth

import (
	"time"

	"github.com/google/uuid"
)

// PersonDTO is the wire form of Person
type PersonDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Identifier  string     `json:"identifier"`
	PhoneNumber string     `json:"phoneNumber"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
}

// UserDTO is the wire form of User. Password is only read on input.
type UserDTO struct {
	ID       uuid.UUID `json:"id"`
	Person   PersonDTO `json:"person"`
	Login    string    `json:"login"`
	Password string    `json:"password,omitempty"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

// UserDetails is the flattened read model of a user
type UserDetails struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Identifier  string     `json:"identifier"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Role        Role       `json:"role"`
	Login       string     `json:"login"`
}

// RoleDTO lists a role with its label
type RoleDTO struct {
	Name        Role   `json:"name"`
	Description string `json:"description"`
}

// SchedulingDTO is the wire form of Scheduling
type SchedulingDTO struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"userId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Month       int            `json:"month"`
	Day         int            `json:"day"`
	Year        int            `json:"year"`
	Type        SchedulingType `json:"type"`
}
