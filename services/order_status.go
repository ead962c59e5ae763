package services

import (
	"time"

	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

// Tabel transisi tertutup. Status yang tidak punya entry = terminal.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:   {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed: {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing: {models.OrderReady},
	models.OrderReady:     {models.OrderDelivered},
}

func canTransition(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateOrderStatus menerapkan satu transisi state machine order.
//
// Aturan aktor:
//   - student: hanya PENDING -> CANCELLED pada ordernya sendiri
//   - chef: harus memiliki minimal satu line item; cancel hanya dari
//     PENDING/CONFIRMED (sebelum mulai masak)
//   - admin: semua transisi valid
//
// Transisi dari status terminal ditolak dengan ErrInvalidTransition; edge
// yang tidak ada di tabel ditolak dengan InvalidOrderStateError. Transisi
// konkuren pada order yang sama diserialisasi lewat compare-and-set pada
// kolom status, dengan EnableForOrder yang idempotent sebagai pengaman kedua.
func (os *OrderService) UpdateOrderStatus(orderID uint, newStatus models.OrderStatus, actorID uint, role models.Role) (*models.Order, error) {
	order, err := os.findByIDWithItems(orderID)
	if err != nil {
		return nil, err
	}
	oldStatus := order.Status

	switch role {
	case models.RoleStudent:
		if order.StudentID != actorID {
			return nil, ErrUnauthorized
		}
		if newStatus != models.OrderCancelled {
			return nil, ErrUnauthorized
		}
		if oldStatus != models.OrderPending {
			return nil, &InvalidOrderStateError{Current: oldStatus, Attempted: newStatus}
		}
	case models.RoleChef:
		if !orderHasChefItem(order, actorID) {
			return nil, ErrUnauthorized
		}
		if newStatus == models.OrderCancelled &&
			oldStatus != models.OrderPending && oldStatus != models.OrderConfirmed {
			return nil, &InvalidOrderStateError{Current: oldStatus, Attempted: newStatus}
		}
	case models.RoleAdmin:
		// semua transisi valid boleh
	default:
		return nil, ErrUnauthorized
	}

	if oldStatus.IsTerminal() {
		return nil, ErrInvalidTransition
	}
	if !canTransition(oldStatus, newStatus) {
		return nil, &InvalidOrderStateError{Current: oldStatus, Attempted: newStatus}
	}

	// Compare-and-set pada status lama: dua transisi konkuren pada order
	// yang sama hanya satu yang menang, yang kalah melihat state terbaru.
	res := os.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, oldStatus).
		Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := os.findByIDWithItems(orderID)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidOrderStateError{Current: current.Status, Attempted: newStatus}
	}
	order.Status = newStatus

	os.handleChatTransition(order, oldStatus, newStatus, actorID)

	return order, nil
}

// CancelOrder -> student membatalkan ordernya sendiri (hanya saat PENDING)
func (os *OrderService) CancelOrder(orderID, studentID uint) (*models.Order, error) {
	return os.UpdateOrderStatus(orderID, models.OrderCancelled, studentID, models.RoleStudent)
}

// CancelOrderByChef -> chef membatalkan sebelum mulai masak (PENDING/CONFIRMED)
func (os *OrderService) CancelOrderByChef(orderID, chefID uint) (*models.Order, error) {
	return os.UpdateOrderStatus(orderID, models.OrderCancelled, chefID, models.RoleChef)
}

// handleChatTransition: satu-satunya pemicu buka/tutup chat session.
// Hanya bereaksi pada edge (old != new). Kegagalan di sini tidak boleh
// menggagalkan transisi yang sudah tersimpan; cukup dicatat.
func (os *OrderService) handleChatTransition(order *models.Order, oldStatus, newStatus models.OrderStatus, actorID uint) {
	if os.Chat == nil || oldStatus == newStatus {
		return
	}

	switch newStatus {
	case models.OrderConfirmed:
		if err := os.Chat.EnableForOrder(order); err != nil {
			utils.ErrorLogger.Printf("Failed to enable chat for order %d: %v", order.ID, err)
			return
		}
		os.postStatusUpdate(order, newStatus, actorID)
	case models.OrderPreparing, models.OrderReady:
		os.postStatusUpdate(order, newStatus, actorID)
	case models.OrderDelivered, models.OrderCancelled:
		os.postStatusUpdate(order, newStatus, actorID)
		if err := os.Chat.DisableForOrder(order.ID); err != nil {
			utils.ErrorLogger.Printf("Failed to disable chat for order %d: %v", order.ID, err)
		}
	}
}

// postStatusUpdate menulis pesan STATUS_UPDATE ke transcript chat (jika
// session aktif ada) dan menyiarkannya ke koneksi live order tersebut.
func (os *OrderService) postStatusUpdate(order *models.Order, status models.OrderStatus, actorID uint) {
	payload, err := os.Chat.PostStatusUpdate(order.ID, actorID, "Order "+order.OrderNumber+" is now "+string(status))
	if err != nil {
		// Session belum/ sudah tidak aktif; bukan kondisi error untuk transisi
		return
	}
	if os.Broadcast != nil {
		os.Broadcast.BroadcastToOrder(order.ID, payload)
	}
}
