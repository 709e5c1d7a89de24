package domain

import (
	"errors"
	"time"
)

type User struct {
	ID              string    `json:"id" gorm:"primaryKey" bson:"_id"`
	Email           string    `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	Password        string    `json:"-" gorm:"not null" bson:"password"` // Never return password in JSON
	FirstName       string    `json:"firstName" bson:"firstName"`
	LastName        string    `json:"lastName" bson:"lastName"`
	IsEmailVerified bool      `json:"isEmailVerified" bson:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey" bson:"_id"`
	UserID    string    `json:"userId" gorm:"index;not null" bson:"userId"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password must be 8-100 characters and contain an uppercase letter, a lowercase letter, a number and one of @$!%*?&")
)
