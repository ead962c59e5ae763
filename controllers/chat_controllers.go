package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/cloud-kitchen-app/services"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

type ChatController struct {
	Chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{Chat: chat}
}

// GetOrderMessages -> transcript chat 1 order, urut sent_at ascending
func (cc *ChatController) GetOrderMessages(c *gin.Context) {
	callerID, _, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	messages, err := cc.Chat.Messages(uint(orderID), callerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Messages fetched successfully", messages)
}

// IsChatEnabled -> cek availability chat. Catatan: call ini bisa membuat
// session (self-healing) bila status order masih chat-eligible.
func (cc *ChatController) IsChatEnabled(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	enabled, err := cc.Chat.IsEnabledForOrder(uint(orderID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chat status checked successfully", enabled)
}

// GetMyActiveSessions -> session ACTIVE user ini (sebagai student atau chef)
func (cc *ChatController) GetMyActiveSessions(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}

	sessions, err := cc.Chat.ActiveSessionsForUser(userID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active chat sessions fetched successfully", sessions)
}

// SendMessage -> kirim pesan lewat REST (alternatif jalur WebSocket)
func (cc *ChatController) SendMessage(c *gin.Context) {
	senderID, _, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payload, err := cc.Chat.SendMessage(uint(orderID), senderID, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Message sent", payload)
}

// MarkMessagesRead -> tandai pesan lawan bicara sudah dibaca
func (cc *ChatController) MarkMessagesRead(c *gin.Context) {
	callerID, _, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	if err := cc.Chat.MarkMessagesRead(uint(orderID), callerID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Messages marked as read", nil)
}

// GetUnreadCount -> jumlah pesan belum dibaca untuk badge di UI
func (cc *ChatController) GetUnreadCount(c *gin.Context) {
	callerID, _, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	count, err := cc.Chat.UnreadCount(uint(orderID), callerID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Unread count fetched", gin.H{"unread": count})
}
