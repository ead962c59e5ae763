package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/chat"
	"github.com/yeremiapane/cloud-kitchen-app/controllers"
	"github.com/yeremiapane/cloud-kitchen-app/middlewares"
	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi hub + services. Hub dipakai dua arah: dari WS controller
	// untuk frame chat, dan dari order service untuk push STATUS_UPDATE.
	hub := chat.NewHub()
	chatSvc := services.NewChatService(db)
	orderSvc := services.NewOrderService(db, chatSvc, hub)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(orderSvc)
	chatCtrl := controllers.NewChatController(chatSvc)
	chatWSCtrl := controllers.NewChatWSController(db, chatSvc, hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Katalog menu bisa dilihat tanpa login
	r.GET("/menu", menuCtrl.GetAllMenuItems)
	r.GET("/menu/:item_id", menuCtrl.GetMenuItemByID)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)

	// MENU (chef mengelola menunya sendiri)
	chefOnly := auth.Group("/")
	chefOnly.Use(middlewares.RequireRole(models.RoleChef))
	{
		chefOnly.GET("/my-menu", menuCtrl.GetMyMenuItems)
		chefOnly.POST("/menu", menuCtrl.CreateMenuItem)
		chefOnly.PATCH("/menu/:item_id", menuCtrl.UpdateMenuItem)
		chefOnly.DELETE("/menu/:item_id", menuCtrl.DeleteMenuItem)
	}

	// ORDERS
	auth.POST("/orders", orderCtrl.Checkout) // student checkout, di-split per chef
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.GET("/my-orders", orderCtrl.GetMyOrders)
	auth.GET("/chef-orders", orderCtrl.GetChefOrders)
	auth.GET("/orders", middlewares.RequireRole(models.RoleAdmin), orderCtrl.GetOrdersByStatus)
	auth.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	auth.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)
	auth.GET("/orders/:order_id/invoice", orderCtrl.GetInvoice)

	// CHAT (REST surface; jalur real-time lewat /ws/chat)
	auth.GET("/orders/:order_id/messages", chatCtrl.GetOrderMessages)
	auth.GET("/orders/:order_id/chat-enabled", chatCtrl.IsChatEnabled)
	auth.POST("/orders/:order_id/messages", chatCtrl.SendMessage)
	auth.POST("/orders/:order_id/messages/read", chatCtrl.MarkMessagesRead)
	auth.GET("/orders/:order_id/messages/unread-count", chatCtrl.GetUnreadCount)
	auth.GET("/chat/sessions", chatCtrl.GetMyActiveSessions)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/chat", chatWSCtrl.HandleChatWS)
	}

	return r
}
