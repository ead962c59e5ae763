package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/models"
)

// recordingBroadcaster menangkap payload yang dikirim state machine ke hub
type recordingBroadcaster struct {
	orderIDs []uint
	payloads []interface{}
}

func (rb *recordingBroadcaster) BroadcastToOrder(orderID uint, payload interface{}) {
	rb.orderIDs = append(rb.orderIDs, orderID)
	rb.payloads = append(rb.payloads, payload)
}

// seedOrderForChef -> 1 order PENDING milik student dengan 1 item milik chef
func seedOrderForChef(t *testing.T, db *gorm.DB, svc *OrderService, studentID uint) models.Order {
	t.Helper()
	created, err := svc.CreateOrder(studentID, CheckoutRequest{
		Items: []CartLine{{MenuItemID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return created[0]
}

func TestOrderLifecycleHappyPath(t *testing.T) {
	db := setupServiceTestDB(t)
	student, chefA, _ := seedTwoChefKitchen(t, db)
	broadcast := &recordingBroadcaster{}
	svc := NewOrderService(db, NewChatService(db), broadcast)

	order := seedOrderForChef(t, db, svc, student.ID)

	steps := []models.OrderStatus{
		models.OrderConfirmed,
		models.OrderPreparing,
		models.OrderReady,
		models.OrderDelivered,
	}
	for _, next := range steps {
		updated, err := svc.UpdateOrderStatus(order.ID, next, chefA.ID, models.RoleChef)
		assert.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, updated.Status)
	}

	var persisted models.Order
	assert.NoError(t, db.First(&persisted, order.ID).Error)
	assert.Equal(t, models.OrderDelivered, persisted.Status)

	// Session dibuka saat CONFIRMED, ditutup saat DELIVERED
	var session models.ChatSession
	assert.NoError(t, db.Where("order_id = ?", order.ID).First(&session).Error)
	assert.Equal(t, models.ChatInactive, session.Status)
	assert.NotNil(t, session.EndedAt)

	// Setiap transisi setelah session aktif meninggalkan entry STATUS_UPDATE
	var updates int64
	db.Model(&models.ChatMessage{}).
		Where("chat_session_id = ? AND message_type = ?", session.ID, models.MessageStatusUpdate).
		Count(&updates)
	assert.Equal(t, int64(4), updates) // CONFIRMED, PREPARING, READY, DELIVERED
	assert.Len(t, broadcast.payloads, 4)
}

func TestTerminalStatusRejectsAnyTransition(t *testing.T) {
	db := setupServiceTestDB(t)
	student, chefA, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	order := seedOrderForChef(t, db, svc, student.ID)
	db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.OrderDelivered)

	for _, next := range []models.OrderStatus{
		models.OrderPending, models.OrderConfirmed, models.OrderPreparing,
		models.OrderReady, models.OrderCancelled,
	} {
		_, err := svc.UpdateOrderStatus(order.ID, next, chefA.ID, models.RoleChef)
		assert.ErrorIs(t, err, ErrInvalidTransition, "from DELIVERED to %s", next)
	}
}

func TestSkippingStatesRejected(t *testing.T) {
	db := setupServiceTestDB(t)
	student, chefA, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	order := seedOrderForChef(t, db, svc, student.ID)

	_, err := svc.UpdateOrderStatus(order.ID, models.OrderReady, chefA.ID, models.RoleChef)
	var invalid *InvalidOrderStateError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.OrderPending, invalid.Current)
}

func TestStudentCancelOnlyWhilePending(t *testing.T) {
	db := setupServiceTestDB(t)
	student, chefA, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	order := seedOrderForChef(t, db, svc, student.ID)

	// PENDING boleh
	cancelled, err := svc.CancelOrder(order.ID, student.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	// Order kedua dimajukan ke PREPARING: cancel harus ditolak dengan
	// pesan yang menyebut status saat ini
	order2 := seedOrderForChef(t, db, svc, student.ID)
	_, err = svc.UpdateOrderStatus(order2.ID, models.OrderConfirmed, chefA.ID, models.RoleChef)
	assert.NoError(t, err)
	_, err = svc.UpdateOrderStatus(order2.ID, models.OrderPreparing, chefA.ID, models.RoleChef)
	assert.NoError(t, err)

	_, err = svc.CancelOrder(order2.ID, student.ID)
	var invalid *InvalidOrderStateError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.OrderPreparing, invalid.Current)
	assert.Contains(t, err.Error(), "PREPARING")
}

func TestChefCancelWindowClosesAtPreparing(t *testing.T) {
	db := setupServiceTestDB(t)
	student, chefA, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	// CONFIRMED masih boleh
	order := seedOrderForChef(t, db, svc, student.ID)
	_, err := svc.UpdateOrderStatus(order.ID, models.OrderConfirmed, chefA.ID, models.RoleChef)
	assert.NoError(t, err)
	cancelled, err := svc.CancelOrderByChef(order.ID, chefA.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)

	// PREPARING tidak boleh lagi
	order2 := seedOrderForChef(t, db, svc, student.ID)
	_, err = svc.UpdateOrderStatus(order2.ID, models.OrderConfirmed, chefA.ID, models.RoleChef)
	assert.NoError(t, err)
	_, err = svc.UpdateOrderStatus(order2.ID, models.OrderPreparing, chefA.ID, models.RoleChef)
	assert.NoError(t, err)

	_, err = svc.CancelOrderByChef(order2.ID, chefA.ID)
	var invalid *InvalidOrderStateError
	assert.ErrorAs(t, err, &invalid)
}

func TestChefNeedsItemOwnership(t *testing.T) {
	db := setupServiceTestDB(t)
	student, _, chefB := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	// Order hanya berisi item chef A; chef B tidak boleh menyentuhnya
	order := seedOrderForChef(t, db, svc, student.ID)

	_, err := svc.UpdateOrderStatus(order.ID, models.OrderConfirmed, chefB.ID, models.RoleChef)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CancelOrderByChef(order.ID, chefB.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestStudentCannotMoveForward(t *testing.T) {
	db := setupServiceTestDB(t)
	student, _, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	order := seedOrderForChef(t, db, svc, student.ID)

	_, err := svc.UpdateOrderStatus(order.ID, models.OrderConfirmed, student.ID, models.RoleStudent)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestConfirmOpensChatSessionOnce(t *testing.T) {
	db := setupServiceTestDB(t)
	student, chefA, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	order := seedOrderForChef(t, db, svc, student.ID)
	_, err := svc.UpdateOrderStatus(order.ID, models.OrderConfirmed, chefA.ID, models.RoleChef)
	assert.NoError(t, err)

	var sessions []models.ChatSession
	db.Where("order_id = ?", order.ID).Find(&sessions)
	assert.Len(t, sessions, 1)
	assert.Equal(t, models.ChatActive, sessions[0].Status)
	assert.Equal(t, student.ID, sessions[0].StudentID)
	assert.Equal(t, chefA.ID, sessions[0].ChefID)

	// Transisi berikutnya tidak menambah session
	_, err = svc.UpdateOrderStatus(order.ID, models.OrderPreparing, chefA.ID, models.RoleChef)
	assert.NoError(t, err)
	db.Where("order_id = ?", order.ID).Find(&sessions)
	assert.Len(t, sessions, 1)
}

func TestCancelFromPendingLeavesNoSession(t *testing.T) {
	db := setupServiceTestDB(t)
	student, _, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	order := seedOrderForChef(t, db, svc, student.ID)
	_, err := svc.CancelOrder(order.ID, student.ID)
	assert.NoError(t, err)

	// Chat tidak pernah dibuka, jadi tidak ada session yang ditinggalkan
	var count int64
	db.Model(&models.ChatSession{}).Where("order_id = ?", order.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestInvoiceMatchesOrder(t *testing.T) {
	db := setupServiceTestDB(t)
	student, _, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	created, err := svc.CreateOrder(student.ID, CheckoutRequest{
		Items: []CartLine{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1},
		},
	})
	assert.NoError(t, err)
	order := created[0]

	invoice, err := svc.GenerateInvoice(order.ID, student.ID, models.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, order.OrderNumber, invoice.OrderNumber)
	assert.Len(t, invoice.Items, 2)

	var sum float64
	for _, line := range invoice.Items {
		sum += line.Subtotal
	}
	assert.Equal(t, invoice.Subtotal, sum)
	assert.Equal(t, order.TotalAmount, invoice.TotalAmount)
}
