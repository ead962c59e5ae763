package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/chat"
	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/services"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// IncomingChatMessage -> frame masuk dari client WebSocket
type IncomingChatMessage struct {
	OrderID uint   `json:"orderId"`
	UserID  uint   `json:"userId"`
	Message string `json:"message"`
}

type ChatWSController struct {
	DB   *gorm.DB
	Chat *services.ChatService
	Hub  *chat.Hub
}

func NewChatWSController(db *gorm.DB, chatSvc *services.ChatService, hub *chat.Hub) *ChatWSController {
	return &ChatWSController{DB: db, Chat: chatSvc, Hub: hub}
}

// HandleChatWS -> endpoint /ws/chat?token=...&orderId=...&userId=...
// Token sudah divalidasi WebSocketAuthMiddleware sebelum sampai sini
// (token invalid = HTTP 401, tidak pernah upgrade). Masalah setelah
// upgrade dikomunikasikan lewat close code: 1008 untuk pelanggaran
// policy (parameter hilang / tidak berhak), 1011 untuk error server.
func (wc *ChatWSController) HandleChatWS(c *gin.Context) {
	claimUserID, _, ok := currentUser(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Error upgrading chat websocket: %v", err)
		return
	}

	orderID, errOrder := strconv.Atoi(c.Query("orderId"))
	userID, errUser := strconv.Atoi(c.Query("userId"))
	if errOrder != nil || errUser != nil || orderID <= 0 || userID <= 0 {
		closeWith(conn, websocket.ClosePolicyViolation, "orderId and userId are required")
		return
	}

	// Identitas di query harus sama dengan identitas di token
	if uint(userID) != claimUserID {
		closeWith(conn, websocket.ClosePolicyViolation, "user is not a participant of this order")
		return
	}

	var order models.Order
	err = wc.DB.Preload("OrderItems").Preload("OrderItems.MenuItem").
		First(&order, uint(orderID)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			closeWith(conn, websocket.ClosePolicyViolation, "order not found")
		} else {
			utils.ErrorLogger.Printf("Error loading order %d for chat: %v", orderID, err)
			closeWith(conn, websocket.CloseInternalServerErr, "internal server error")
		}
		return
	}

	if !wc.Chat.IsUserAuthorized(&order, claimUserID) {
		closeWith(conn, websocket.ClosePolicyViolation, "user is not a participant of this order")
		return
	}

	wc.Hub.Register(order.ID, claimUserID, conn)
	defer func() {
		wc.Hub.Unregister(conn)
		conn.Close()
	}()

	wc.readLoop(conn, order.ID, claimUserID)
}

// readLoop -> baca frame sampai client disconnect. Pesan valid disimpan lalu
// dibroadcast ke kedua participant; pesan gagal dijawab dengan SYSTEM ke
// pengirim saja, koneksi tetap hidup.
func (wc *ChatWSController) readLoop(conn *websocket.Conn, orderID, userID uint) {
	for {
		var incoming IncomingChatMessage
		if err := conn.ReadJSON(&incoming); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.ErrorLogger.Printf("Chat connection error (%s): %v", chat.Key(orderID, userID), err)
			}
			return
		}

		// Frame selalu dinilai terhadap identitas koneksi, bukan isi frame
		payload, err := wc.Chat.SendMessage(orderID, userID, incoming.Message)
		if err != nil {
			wc.Hub.SendTo(orderID, userID, services.SystemMessage(chatErrorText(err)))
			continue
		}

		wc.Hub.BroadcastToOrder(orderID, payload)
	}
}

func chatErrorText(err error) string {
	switch {
	case err == services.ErrChatNotAvailable:
		return "Chat is not available for this order"
	case err == services.ErrUnauthorized:
		return "You are not allowed to chat on this order"
	case err == services.ErrOrderNotFound:
		return "Order not found"
	default:
		return "Failed to send message"
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		utils.ErrorLogger.Printf("Error writing close frame: %v", err)
	}
	conn.Close()
}
