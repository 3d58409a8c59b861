package models

import (
	"time"

	"gorm.io/gorm"
)

// SoftDeletable is implemented by entities that are deactivated instead of
// being removed from the database.
type SoftDeletable interface {
	Active() bool
	MarkInactive(at time.Time)
	MarkActive(at time.Time)
}

// Audit carries the activity flag and timestamps shared by soft-deletable
// entities.
type Audit struct {
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Audit) Active() bool { return a.IsActive }

func (a *Audit) MarkInactive(at time.Time) {
	a.IsActive = false
	a.UpdatedAt = at
}

func (a *Audit) MarkActive(at time.Time) {
	a.IsActive = true
	a.UpdatedAt = at
}

// BeforeCreate makes every new row active.
func (a *Audit) BeforeCreate(tx *gorm.DB) error {
	a.IsActive = true
	return nil
}
