// Package chat menampung registry koneksi WebSocket per order dan
// broadcaster-nya. Registry process-local dan tidak dipersist; key-nya
// "order:{orderID}:user:{userID}" dengan maksimal satu koneksi live per key.
package chat

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

// Conn adalah handle transport minimum yang dibutuhkan hub.
// *websocket.Conn milik gorilla memenuhinya.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Hub struct {
	mu    sync.Mutex
	conns map[string]Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Key -> channel key satu participant pada satu order
func Key(orderID, userID uint) string {
	return fmt.Sprintf("order:%d:user:%d", orderID, userID)
}

func orderPrefix(orderID uint) string {
	return fmt.Sprintf("order:%d:user:", orderID)
}

// Register -> daftarkan koneksi; koneksi lama pada key yang sama (reconnect)
// ditimpa dan ditutup
func (h *Hub) Register(orderID, userID uint, conn Conn) {
	key := Key(orderID, userID)

	h.mu.Lock()
	stale, hadStale := h.conns[key]
	h.conns[key] = conn
	total := len(h.conns)
	h.mu.Unlock()

	if hadStale && stale != conn {
		stale.Close()
	}
	utils.InfoLogger.Printf("Chat connection registered: %s (total %d)", key, total)
}

// Unregister -> lepas semua entry milik handle ini (satu handle maksimal
// satu key, jadi efektifnya satu penghapusan)
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	for key, c := range h.conns {
		if c == conn {
			delete(h.conns, key)
			utils.InfoLogger.Printf("Chat connection removed: %s (remaining %d)", key, len(h.conns))
		}
	}
	h.mu.Unlock()
}

// BroadcastToOrder mengirim payload ke setiap koneksi order tersebut.
// Best-effort dan tanpa urutan antar penerima: daftar penerima disalin di
// bawah lock, pengiriman dilakukan di luarnya supaya WriteJSON yang lambat
// tidak menahan registry, dan kegagalan satu penerima tidak menggagalkan
// penerima lain.
func (h *Hub) BroadcastToOrder(orderID uint, payload interface{}) {
	prefix := orderPrefix(orderID)

	h.mu.Lock()
	recipients := make(map[string]Conn)
	for key, conn := range h.conns {
		if strings.HasPrefix(key, prefix) {
			recipients[key] = conn
		}
	}
	h.mu.Unlock()

	for key, conn := range recipients {
		if err := conn.WriteJSON(payload); err != nil {
			// Kemungkinan socket sudah tertutup; skip, jangan blokir yang lain
			utils.ErrorLogger.Printf("Error broadcasting to %s: %v", key, err)
		}
	}
}

// SendTo -> kirim ke satu participant saja (error SYSTEM ke pengirim)
func (h *Hub) SendTo(orderID, userID uint, payload interface{}) {
	h.mu.Lock()
	conn, ok := h.conns[Key(orderID, userID)]
	h.mu.Unlock()
	if !ok {
		return
	}
	if err := conn.WriteJSON(payload); err != nil {
		utils.ErrorLogger.Printf("Error sending to %s: %v", Key(orderID, userID), err)
	}
}

// Count -> jumlah koneksi live (untuk logging/diagnostic)
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
