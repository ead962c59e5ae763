package models

import "time"

type MessageType string

const (
	MessageText         MessageType = "TEXT"
	MessageStatusUpdate MessageType = "STATUS_UPDATE"
	MessageSystem       MessageType = "SYSTEM"
)

// ChatMessage bersifat immutable setelah tersimpan; hanya ReadStatus yang
// boleh berubah. Urutan pesan = sent_at ascending, tie-break id.
type ChatMessage struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ChatSessionID uint        `gorm:"not null;index" json:"chat_session_id"`
	SenderUserID  uint        `gorm:"not null" json:"sender_user_id"`
	Message       string      `gorm:"type:text;not null" json:"message"`
	MessageType   MessageType `gorm:"type:varchar(20);not null;default:'TEXT'" json:"message_type"`
	SentAt        time.Time   `gorm:"not null;index" json:"sent_at"`
	ReadStatus    bool        `gorm:"not null;default:false" json:"read_status"`
}
