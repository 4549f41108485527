package models

import (
	"time"
)

type Trainer struct {
	ID              int64
	Name            string
	Email           string
	Mobile          string
	PasswordHash    string // empty when the admin has only issued a temp password
	TempPassword    string // plaintext, admin-issued; cleared on permanent password set
	IsTempPassword  bool
	IsActive        bool
	PortalAccess    bool
	CourseID        *int64
	CourseName      *string // joined from course, read-only
	Bio             *string
	ProfileImageURL *string
	LastLoginAt     *time.Time
}

// Course is a read-only join target; only CourseName is surfaced to trainers.
type Course struct {
	ID         int64
	CourseName string
}

// TrainerProfile is the outward-facing projection of a Trainer.
// PasswordHash and TempPassword are never part of it.
type TrainerProfile struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Mobile          string     `json:"mobile"`
	IsTempPassword  bool       `json:"is_temp_password"`
	CourseID        *int64     `json:"course_id"`
	CourseName      *string    `json:"course_name"`
	Bio             *string    `json:"bio"`
	ProfileImageURL *string    `json:"profile_image_url"`
	PortalAccess    bool       `json:"portal_access"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

// Profile builds the outward-facing projection.
func (t *Trainer) Profile() *TrainerProfile {
	return &TrainerProfile{
		ID:              t.ID,
		Name:            t.Name,
		Email:           t.Email,
		Mobile:          t.Mobile,
		IsTempPassword:  t.IsTempPassword,
		CourseID:        t.CourseID,
		CourseName:      t.CourseName,
		Bio:             t.Bio,
		ProfileImageURL: t.ProfileImageURL,
		PortalAccess:    t.PortalAccess,
		LastLoginAt:     t.LastLoginAt,
	}
}
