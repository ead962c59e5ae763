package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/services"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// Checkout -> satu keranjang menjadi satu order per chef (status PENDING)
func (oc *OrderController) Checkout(c *gin.Context) {
	studentID, role, ok := currentUser(c)
	if !ok || role != models.RoleStudent {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := oc.Orders.CreateOrder(studentID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Orders created", orders)
}

// GetOrderByID -> detail 1 order (pemilik/chef terkait/admin)
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	callerID, role, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	order, err := oc.Orders.GetOrderByID(uint(orderID), callerID, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetMyOrders -> order milik student yang sedang login
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	studentID, _, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}

	orders, err := oc.Orders.GetOrdersByStudent(studentID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My orders", orders)
}

// GetChefOrders -> order yang memuat item chef yang sedang login
func (oc *OrderController) GetChefOrders(c *gin.Context) {
	chefID, role, ok := currentUser(c)
	if !ok || (role != models.RoleChef && role != models.RoleAdmin) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	orders, err := oc.Orders.GetOrdersByChef(chefID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chef orders", orders)
}

// GetOrdersByStatus -> admin memantau pipeline (?status=PENDING dst.)
func (oc *OrderController) GetOrdersByStatus(c *gin.Context) {
	_, role, ok := currentUser(c)
	if !ok || role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	status, valid := models.ParseOrderStatus(strings.ToUpper(c.Query("status")))
	if !valid {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown order status"))
		return
	}

	orders, err := oc.Orders.GetOrdersByStatus(status)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders by status", orders)
}

// UpdateOrderStatus -> chef/admin menggerakkan state machine order
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	actorID, role, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	newStatus, valid := models.ParseOrderStatus(strings.ToUpper(req.Status))
	if !valid {
		utils.RespondError(c, http.StatusBadRequest, errors.New("unknown order status"))
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(uint(orderID), newStatus, actorID, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// CancelOrder -> jendela pembatalan tergantung role:
// student hanya saat PENDING, chef saat PENDING/CONFIRMED
func (oc *OrderController) CancelOrder(c *gin.Context) {
	actorID, role, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	var (
		order *models.Order
		err   error
	)
	switch role {
	case models.RoleStudent:
		order, err = oc.Orders.CancelOrder(uint(orderID), actorID)
	case models.RoleChef:
		order, err = oc.Orders.CancelOrderByChef(uint(orderID), actorID)
	case models.RoleAdmin:
		order, err = oc.Orders.UpdateOrderStatus(uint(orderID), models.OrderCancelled, actorID, role)
	default:
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// GetInvoice -> dokumen invoice JSON untuk 1 order
func (oc *OrderController) GetInvoice(c *gin.Context) {
	callerID, role, ok := currentUser(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoPermission)
		return
	}
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	invoice, err := oc.Orders.GenerateInvoice(uint(orderID), callerID, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice generated", invoice)
}
