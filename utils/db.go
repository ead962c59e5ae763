package utils

import (
	"sync"

	"gorm.io/gorm"
)

var (
	db   *gorm.DB
	once sync.Once
	mu   sync.RWMutex
)

// InitDB -> simpan koneksi database sekali di startup
func InitDB(database *gorm.DB) {
	once.Do(func() {
		db = database
	})
}

// GetDB -> koneksi database yang disimpan InitDB
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return db
}
