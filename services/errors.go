package services

import (
	"fmt"

	"github.com/yeremiapane/cloud-kitchen-app/models"
)

var (
	ErrOrderNotFound     = &ServiceError{"order not found"}
	ErrChatNotAvailable  = &ServiceError{"chat is not available for this order at this time"}
	ErrUnauthorized      = &ServiceError{"you are not authorized for this order"}
	ErrSessionNotFound   = &ServiceError{"chat session not found for order"}
	ErrInvalidTransition = &ServiceError{"order is in a terminal status"}
)

type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// ItemNotFoundError -> checkout gagal total, tidak ada order yang tersimpan
type ItemNotFoundError struct {
	MenuItemID uint
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item not found with id: %d", e.MenuItemID)
}

// ItemUnavailableError -> item ada tapi sedang tidak tersedia
type ItemUnavailableError struct {
	Name string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("menu item %s is not available", e.Name)
}

// InvalidOrderStateError membawa status order saat ini supaya pesan error
// menyebut jendela yang dilanggar (mis. cancel saat PREPARING).
type InvalidOrderStateError struct {
	Current   models.OrderStatus
	Attempted models.OrderStatus
}

func (e *InvalidOrderStateError) Error() string {
	if e.Attempted == models.OrderCancelled {
		return fmt.Sprintf("cannot cancel order in %s status", e.Current)
	}
	return fmt.Sprintf("cannot move order from %s to %s", e.Current, e.Attempted)
}
