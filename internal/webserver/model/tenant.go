package model

import "time"

// Tenant is an isolated community
type Tenant struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Slug      string `gorm:"not null; uniqueIndex"`
	Name      string
	Active    bool `gorm:"not null; default:true; index"`
}
