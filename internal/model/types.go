package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role carried by an identity and its tokens
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents an identity that can authenticate.
// OTPHash and OTPExpiresAt are either both set or both cleared.
type User struct {
	ID           int64
	GUID         uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	IsVerified   bool
	Role         Role
	OTPHash      string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasOTP reports whether a one-time code is currently attached to the user
func (u *User) HasOTP() bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil
}

// AccountType enumerates the kinds of money accounts
type AccountType string

const (
	AccountCash   AccountType = "CASH"
	AccountBank   AccountType = "BANK"
	AccountCredit AccountType = "CREDIT"
	AccountDebit  AccountType = "DEBIT"
	AccountWallet AccountType = "WALLET"
	AccountOther  AccountType = "OTHER"
)

// Account is a money account owned by a single user
type Account struct {
	ID          uuid.UUID
	UserID      int64
	Name        string
	Balance     float64
	Type        *AccountType
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Budget is a spending budget owned by a single user
type Budget struct {
	ID              uuid.UUID
	UserID          int64
	Name            string
	Amount          float64
	RemainingAmount float64
	StartDate       time.Time
	EndDate         *time.Time
	CategoryID      *string
	IsRecurring     bool
	RecurrenceType  string
	ResetDay        int
	NextResetDate   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
