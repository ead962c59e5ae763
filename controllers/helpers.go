package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/services"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

// ErrNoPermission adalah error custom untuk akses yang ditolak
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// currentUser -> ambil identitas dari context (diset oleh auth middleware)
func currentUser(c *gin.Context) (uint, models.Role, bool) {
	idVal, ok := c.Get("user_id")
	if !ok {
		return 0, "", false
	}
	userID, ok := idVal.(uint)
	if !ok {
		return 0, "", false
	}

	roleVal, _ := c.Get("role")
	roleStr, _ := roleVal.(string)
	role, ok := models.ParseRole(roleStr)
	if !ok {
		return 0, "", false
	}
	return userID, role, true
}

// respondServiceError -> mapping taxonomy error service ke HTTP status
func respondServiceError(c *gin.Context, err error) {
	var itemNotFound *services.ItemNotFoundError
	var itemUnavailable *services.ItemUnavailableError
	var invalidState *services.InvalidOrderStateError

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &itemNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &itemUnavailable):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &invalidState):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrChatNotAvailable):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrSessionNotFound):
		// Session yang seharusnya ada tapi hilang = bug internal, bukan
		// kesalahan pemanggil
		utils.RespondError(c, http.StatusInternalServerError, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
