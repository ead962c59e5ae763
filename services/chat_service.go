package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

// ChatService memiliki chat session per order. Session dibuka/ditutup oleh
// state machine order (lihat OrderService.handleChatTransition) dan bisa
// dibuat lazily lewat EnsureSession bila transisinya terlewat.
type ChatService struct {
	DB *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{DB: db}
}

// ChatMessagePayload adalah envelope wire untuk broadcast WebSocket dan
// response REST. Field names mengikuti kontrak frontend (camelCase).
type ChatMessagePayload struct {
	ID            uint      `json:"id"`
	ChatSessionID uint      `json:"chatSessionId"`
	SenderUserID  uint      `json:"senderUserId"`
	SenderName    string    `json:"senderName"`
	Message       string    `json:"message"`
	MessageType   string    `json:"messageType"`
	SentAt        time.Time `json:"sentAt"`
	ReadStatus    bool      `json:"readStatus"`
}

func payloadFromMessage(msg models.ChatMessage, senderName string) ChatMessagePayload {
	return ChatMessagePayload{
		ID:            msg.ID,
		ChatSessionID: msg.ChatSessionID,
		SenderUserID:  msg.SenderUserID,
		SenderName:    senderName,
		Message:       msg.Message,
		MessageType:   string(msg.MessageType),
		SentAt:        msg.SentAt,
		ReadStatus:    msg.ReadStatus,
	}
}

// SystemMessage -> payload SYSTEM untuk dikirim balik ke satu koneksi saja;
// tidak pernah dipersist
func SystemMessage(text string) ChatMessagePayload {
	return ChatMessagePayload{
		Message:     text,
		MessageType: string(models.MessageSystem),
		SenderName:  "System",
		SentAt:      time.Now(),
	}
}

// EnableForOrder idempotent: buat session ACTIVE bila belum ada, re-aktifkan
// bila INACTIVE, no-op bila sudah ACTIVE. Participant diambil dari pemilik
// order dan chef item pertama (order multi-chef sudah di-split saat checkout).
func (cs *ChatService) EnableForOrder(order *models.Order) error {
	var existing models.ChatSession
	err := cs.DB.Where("order_id = ?", order.ID).First(&existing).Error
	if err == nil {
		if existing.Status != models.ChatActive {
			utils.InfoLogger.Printf("Reactivating chat session for order %d", order.ID)
			existing.Status = models.ChatActive
			existing.EndedAt = nil
			return cs.DB.Save(&existing).Error
		}
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	full := order
	if len(full.OrderItems) == 0 {
		var loaded models.Order
		if err := cs.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&loaded, order.ID).Error; err != nil {
			return ErrOrderNotFound
		}
		full = &loaded
	}
	if len(full.OrderItems) == 0 {
		return ErrSessionNotFound
	}

	session := models.ChatSession{
		OrderID:   full.ID,
		StudentID: full.StudentID,
		ChefID:    full.OrderItems[0].MenuItem.ChefID,
		Status:    models.ChatActive,
		StartedAt: time.Now(),
	}
	if err := cs.DB.Create(&session).Error; err != nil {
		// Kemungkinan race dengan transisi lain; unique index order_id
		// memastikan tetap satu session. Anggap sudah ada.
		var again models.ChatSession
		if err2 := cs.DB.Where("order_id = ?", order.ID).First(&again).Error; err2 == nil {
			return nil
		}
		return err
	}
	utils.InfoLogger.Printf("Chat session %d created for order %d (student %d, chef %d)",
		session.ID, full.ID, session.StudentID, session.ChefID)
	return nil
}

// DisableForOrder -> set INACTIVE + stamp ended_at; no-op bila session tidak ada
func (cs *ChatService) DisableForOrder(orderID uint) error {
	var session models.ChatSession
	if err := cs.DB.Where("order_id = ?", orderID).First(&session).Error; err != nil {
		return nil
	}
	now := time.Now()
	session.Status = models.ChatInactive
	session.EndedAt = &now
	return cs.DB.Save(&session).Error
}

// queryEnabled -> pengecekan murni tanpa side effect
func (cs *ChatService) queryEnabled(orderID uint) (bool, error) {
	var count int64
	err := cs.DB.Model(&models.ChatSession{}).
		Where("order_id = ? AND status = ?", orderID, models.ChatActive).
		Count(&count).Error
	return count > 0, err
}

// EnsureSession membuat/mengaktifkan kembali session bila status order masih
// membuka jendela chat. Path self-healing: transisi status dan pembuatan
// session tidak atomik, jadi pengecekan availability harus mentolerir
// transisi yang terlewat.
func (cs *ChatService) EnsureSession(orderID uint) (bool, error) {
	var order models.Order
	if err := cs.DB.First(&order, orderID).Error; err != nil {
		return false, ErrOrderNotFound
	}
	if !order.Status.AllowsChat() {
		return false, nil
	}
	if err := cs.EnableForOrder(&order); err != nil {
		utils.ErrorLogger.Printf("Failed to ensure chat session for order %d: %v", orderID, err)
		return false, err
	}
	return true, nil
}

// IsEnabledForOrder -> true bila session ACTIVE ada. Catatan kontrak: bila
// tidak ada session tapi status order masih chat-eligible, call ini MEMBUAT
// session (delegasi ke EnsureSession), jadi bisa menulis.
func (cs *ChatService) IsEnabledForOrder(orderID uint) (bool, error) {
	enabled, err := cs.queryEnabled(orderID)
	if err != nil || enabled {
		return enabled, err
	}
	return cs.EnsureSession(orderID)
}

// IsUserAuthorized -> userID adalah student pemilik order, atau chef yang
// memiliki minimal satu line item. Precondition: order sudah ter-load
// lengkap dengan OrderItems.MenuItem (tidak di-refetch di sini supaya path
// broadcast tidak menimbun query).
func (cs *ChatService) IsUserAuthorized(order *models.Order, userID uint) bool {
	if order.StudentID == userID {
		return true
	}
	return orderHasChefItem(order, userID)
}

// SendMessage memvalidasi availability + otorisasi lalu meng-append pesan
// TEXT ke log session. Mengembalikan payload lengkap dengan nama pengirim.
func (cs *ChatService) SendMessage(orderID, senderID uint, body string) (*ChatMessagePayload, error) {
	var sender models.User
	if err := cs.DB.First(&sender, senderID).Error; err != nil {
		return nil, ErrUnauthorized
	}

	var order models.Order
	if err := cs.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&order, orderID).Error; err != nil {
		return nil, ErrOrderNotFound
	}

	enabled, err := cs.IsEnabledForOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrChatNotAvailable
	}

	if !cs.IsUserAuthorized(&order, senderID) {
		utils.ErrorLogger.Printf("User %d not authorized to chat for order %d", senderID, orderID)
		return nil, ErrUnauthorized
	}

	return cs.appendMessage(orderID, senderID, sender.Name, body, models.MessageText)
}

// PostStatusUpdate -> entry STATUS_UPDATE di transcript; gagal diam-diam
// bila session tidak ACTIVE (transisi tetap sah tanpa transcript entry)
func (cs *ChatService) PostStatusUpdate(orderID, actorID uint, text string) (*ChatMessagePayload, error) {
	enabled, err := cs.queryEnabled(orderID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrChatNotAvailable
	}

	var actor models.User
	senderName := "System"
	if err := cs.DB.First(&actor, actorID).Error; err == nil {
		senderName = actor.Name
	}
	return cs.appendMessage(orderID, actorID, senderName, text, models.MessageStatusUpdate)
}

func (cs *ChatService) appendMessage(orderID, senderID uint, senderName, body string, msgType models.MessageType) (*ChatMessagePayload, error) {
	var session models.ChatSession
	if err := cs.DB.Where("order_id = ?", orderID).First(&session).Error; err != nil {
		return nil, ErrSessionNotFound
	}

	msg := models.ChatMessage{
		ChatSessionID: session.ID,
		SenderUserID:  senderID,
		Message:       body,
		MessageType:   msgType,
		SentAt:        time.Now(),
	}
	if err := cs.DB.Create(&msg).Error; err != nil {
		return nil, err
	}

	payload := payloadFromMessage(msg, senderName)
	return &payload, nil
}

// Messages -> seluruh transcript order, sent_at ascending (tie-break id),
// dengan nama pengirim di-resolve per pesan
func (cs *ChatService) Messages(orderID, callerID uint) ([]ChatMessagePayload, error) {
	var order models.Order
	if err := cs.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&order, orderID).Error; err != nil {
		return nil, ErrOrderNotFound
	}
	if !cs.IsUserAuthorized(&order, callerID) {
		return nil, ErrUnauthorized
	}

	var session models.ChatSession
	if err := cs.DB.Where("order_id = ?", orderID).First(&session).Error; err != nil {
		return nil, ErrSessionNotFound
	}

	var messages []models.ChatMessage
	if err := cs.DB.Where("chat_session_id = ?", session.ID).
		Order("sent_at asc, id asc").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	payloads := make([]ChatMessagePayload, 0, len(messages))
	for _, msg := range messages {
		var sender models.User
		senderName := "System"
		if err := cs.DB.First(&sender, msg.SenderUserID).Error; err == nil {
			senderName = sender.Name
		}
		payloads = append(payloads, payloadFromMessage(msg, senderName))
	}
	return payloads, nil
}

// MarkMessagesRead -> tandai pesan lawan bicara sebagai sudah dibaca
func (cs *ChatService) MarkMessagesRead(orderID, callerID uint) error {
	var order models.Order
	if err := cs.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&order, orderID).Error; err != nil {
		return ErrOrderNotFound
	}
	if !cs.IsUserAuthorized(&order, callerID) {
		return ErrUnauthorized
	}

	var session models.ChatSession
	if err := cs.DB.Where("order_id = ?", orderID).First(&session).Error; err != nil {
		return nil
	}

	return cs.DB.Model(&models.ChatMessage{}).
		Where("chat_session_id = ? AND sender_user_id != ? AND read_status = ?", session.ID, callerID, false).
		Update("read_status", true).Error
}

// UnreadCount -> jumlah pesan lawan bicara yang belum dibaca
func (cs *ChatService) UnreadCount(orderID, callerID uint) (int64, error) {
	var session models.ChatSession
	if err := cs.DB.Where("order_id = ?", orderID).First(&session).Error; err != nil {
		return 0, nil
	}

	var count int64
	err := cs.DB.Model(&models.ChatMessage{}).
		Where("chat_session_id = ? AND sender_user_id != ? AND read_status = ?", session.ID, callerID, false).
		Count(&count).Error
	return count, err
}

// ActiveSessionsForUser -> session ACTIVE di mana user jadi student atau chef
func (cs *ChatService) ActiveSessionsForUser(userID uint) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := cs.DB.Where("(student_id = ? OR chef_id = ?) AND status = ?",
		userID, userID, models.ChatActive).
		Find(&sessions).Error
	return sessions, err
}
