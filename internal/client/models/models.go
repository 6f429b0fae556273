// Package models holds the wire-level data types exchanged with the
// SalonDesk backend.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the authenticated account returned by the login endpoint and
// cached in the auth state blob.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// TokenPair is the credential pair minted on login/setup.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Customer is a salon client record.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Appointment is a calendar booking binding a customer, a staff member and
// a catalog service to a time slot.
type Appointment struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	StaffID    string    `json:"staff_id"`
	ServiceID  string    `json:"service_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     string    `json:"status"`
}

// SalonService is a bookable catalog entry. Prices are exact decimals,
// never floats.
type SalonService struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DurationMin int             `json:"duration_min"`
	Price       decimal.Decimal `json:"price"`
}

// StaffMember is an employee who can be booked for appointments.
type StaffMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
}
