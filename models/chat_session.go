package models

import "time"

type ChatStatus string

const (
	ChatActive   ChatStatus = "ACTIVE"
	ChatInactive ChatStatus = "INACTIVE"
	ChatArchived ChatStatus = "ARCHIVED"
)

// ChatSession mengikat satu student dan satu chef untuk satu order.
// Maksimal satu session per order; kedua participant tetap sejak dibuat.
type ChatSession struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OrderID   uint       `gorm:"not null;uniqueIndex" json:"order_id"`
	StudentID uint       `gorm:"not null;index" json:"student_id"`
	ChefID    uint       `gorm:"not null;index" json:"chef_id"`
	Status    ChatStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
