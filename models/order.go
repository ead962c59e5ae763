package models

import "time"

// OrderStatus mengikuti state machine order:
// PENDING -> CONFIRMED -> PREPARING -> READY -> DELIVERED
// PENDING/CONFIRMED -> CANCELLED. DELIVERED dan CANCELLED terminal.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus -> validasi string status dari request
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// IsTerminal -> tidak ada transisi keluar dari status ini
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// AllowsChat -> status yang membuka jendela chat student-chef
func (s OrderStatus) AllowsChat() bool {
	switch s {
	case OrderConfirmed, OrderPreparing, OrderReady:
		return true
	}
	return false
}

type Order struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	OrderNumber         string      `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	StudentID           uint        `gorm:"not null;index" json:"student_id"`
	Student             User        `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
	Status              OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TotalAmount         float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	DeliveryAddress     string      `gorm:"type:text" json:"delivery_address"`
	SpecialInstructions string      `gorm:"type:text" json:"special_instructions"`
	EstimatedReadyTime  *time.Time  `json:"estimated_ready_time,omitempty"`
	CreatedAt           time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems          []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}
