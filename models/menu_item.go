package models

import "time"

type MenuItem struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	ChefID          uint    `gorm:"not null;index" json:"chef_id"`
	Chef            User    `gorm:"foreignKey:ChefID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"chef,omitempty"`
	Name            string  `gorm:"type:varchar(255);not null" json:"name"`
	Description     string  `gorm:"type:text" json:"description"`
	Price           float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Category        string  `gorm:"type:varchar(100)" json:"category"`
	Vegetarian      bool    `gorm:"not null;default:false" json:"vegetarian"`
	PreparationTime int     `json:"preparation_time"` // menit
	Available       bool    `gorm:"not null;default:true" json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
