// Package institute stores institutes and their subscriptions.
package institute

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("institute not found")
	ErrInvalidInput = errors.New("invalid institute input")
)

// Institute is a school or coaching centre using the platform.
type Institute struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subscription ties an institute to a paid plan. Plans and billing are not
// modelled yet.
type Subscription struct {
	ID          string    `json:"id"`
	InstituteID string    `json:"instituteId"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewInstituteInput is the request body for creating an institute.
type NewInstituteInput struct {
	Name string `json:"name" validate:"notblank,max=200"`
}

// NewSubscriptionInput is the request body for creating a subscription.
type NewSubscriptionInput struct {
	InstituteID string `json:"instituteId" validate:"notblank"`
}
