package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/models"
)

// Broadcaster mengirim payload ke semua koneksi live milik satu order.
// Diimplementasikan oleh chat.Hub; nil berarti tidak ada fan-out (mis. tests).
type Broadcaster interface {
	BroadcastToOrder(orderID uint, payload interface{})
}

type OrderService struct {
	DB        *gorm.DB
	Chat      *ChatService
	Broadcast Broadcaster
}

func NewOrderService(db *gorm.DB, chat *ChatService, broadcast Broadcaster) *OrderService {
	return &OrderService{DB: db, Chat: chat, Broadcast: broadcast}
}

// findByIDWithItems -> load order lengkap dengan item + menu + chef
// (dibutuhkan pengecekan otorisasi chat tanpa query tambahan)
func (os *OrderService) findByIDWithItems(orderID uint) (*models.Order, error) {
	var order models.Order
	err := os.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&order, orderID).Error
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// GetOrderByID -> detail order; hanya pemilik, chef dengan item di order,
// atau admin yang boleh melihat
func (os *OrderService) GetOrderByID(orderID, callerID uint, role models.Role) (*models.Order, error) {
	order, err := os.findByIDWithItems(orderID)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin:
		return order, nil
	case models.RoleStudent:
		if order.StudentID != callerID {
			return nil, ErrUnauthorized
		}
	case models.RoleChef:
		if !orderHasChefItem(order, callerID) {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrUnauthorized
	}
	return order, nil
}

// GetOrdersByStudent -> semua order milik satu student, terbaru dulu
func (os *OrderService) GetOrdersByStudent(studentID uint) ([]models.Order, error) {
	var orders []models.Order
	err := os.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// GetOrdersByChef -> order yang memuat minimal satu item milik chef ini
func (os *OrderService) GetOrdersByChef(chefID uint) ([]models.Order, error) {
	var orders []models.Order
	err := os.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		Where(`id IN (
			SELECT oi.order_id FROM order_items oi
			JOIN menu_items mi ON mi.id = oi.menu_item_id
			WHERE mi.chef_id = ?
		)`, chefID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// GetOrdersByStatus -> untuk admin memantau pipeline order
func (os *OrderService) GetOrdersByStatus(status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := os.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		Where("status = ?", status).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// orderHasChefItem -> true bila minimal satu line item dimiliki chef tsb.
// Precondition: order.OrderItems sudah ter-load beserta MenuItem-nya.
func orderHasChefItem(order *models.Order, chefID uint) bool {
	for _, item := range order.OrderItems {
		if item.MenuItem.ChefID == chefID {
			return true
		}
	}
	return false
}

type InvoiceLine struct {
	MenuItemName string  `json:"menu_item_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Subtotal     float64 `json:"subtotal"`
}

type Invoice struct {
	OrderNumber     string        `json:"order_number"`
	OrderDate       time.Time     `json:"order_date"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `json:"customer_email"`
	DeliveryAddress string        `json:"delivery_address"`
	Items           []InvoiceLine `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	TotalAmount     float64       `json:"total_amount"`
	Status          string        `json:"status"`
}

// GenerateInvoice -> dokumen invoice untuk satu order
func (os *OrderService) GenerateInvoice(orderID, callerID uint, role models.Role) (*Invoice, error) {
	order, err := os.GetOrderByID(orderID, callerID, role)
	if err != nil {
		return nil, err
	}

	var student models.User
	if err := os.DB.First(&student, order.StudentID).Error; err != nil {
		return nil, err
	}

	inv := &Invoice{
		OrderNumber:     order.OrderNumber,
		OrderDate:       order.CreatedAt,
		CustomerName:    student.Name,
		CustomerEmail:   student.Email,
		DeliveryAddress: order.DeliveryAddress,
		TotalAmount:     order.TotalAmount,
		Status:          string(order.Status),
	}
	for _, item := range order.OrderItems {
		inv.Items = append(inv.Items, InvoiceLine{
			MenuItemName: item.MenuItem.Name,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Subtotal:     item.Subtotal,
		})
		inv.Subtotal += item.Subtotal
	}
	return inv, nil
}
