package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ClientStatus string

const (
	StatusActive   ClientStatus = "active"
	StatusInactive ClientStatus = "inactive"
)

func (s ClientStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type Client struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null;index" json:"name"`
	Email     string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Company   string       `gorm:"type:text" json:"company,omitempty"`
	Phone     string       `gorm:"type:text" json:"phone,omitempty"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	Status    ClientStatus `gorm:"type:text;not null;default:'active'" json:"status"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null" json:"updatedAt"`
}

// TableName sets the database table name.
func (Client) TableName() string { return "clients" }
