package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/controllers"
	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

// asUser -> middleware pengganti AuthMiddleware untuk test: langsung set
// identitas di context tanpa token
func asUser(userID uint, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", string(role))
		c.Next()
	}
}

func setupTestDBForMenu(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.MenuItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	chef := models.User{Name: "Chef Andi", Email: "andi@kitchen.test", Password: "x", Role: models.RoleChef}
	db.Create(&chef)
	db.Create(&models.MenuItem{ChefID: chef.ID, Name: "Nasi Goreng", Price: 25000, Category: "main", Available: true})
	db.Create(&models.MenuItem{ChefID: chef.ID, Name: "Rendang", Price: 40000, Category: "main", Available: false})
	return db
}

func setupMenuRouter(db *gorm.DB, userID uint, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	menuCtrl := controllers.NewMenuController(db)

	router.GET("/menu", menuCtrl.GetAllMenuItems)
	router.GET("/menu/:item_id", menuCtrl.GetMenuItemByID)

	auth := router.Group("/api", asUser(userID, role))
	auth.GET("/my-menu", menuCtrl.GetMyMenuItems)
	auth.POST("/menu", menuCtrl.CreateMenuItem)
	auth.PATCH("/menu/:item_id", menuCtrl.UpdateMenuItem)
	auth.DELETE("/menu/:item_id", menuCtrl.DeleteMenuItem)
	return router
}

func TestPublicCatalogHidesUnavailable(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForMenu(t)
	router := setupMenuRouter(db, 1, models.RoleChef)

	req, _ := http.NewRequest("GET", "/menu", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.MenuItem `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "Nasi Goreng", resp.Data[0].Name)
}

func TestChefCreatesAndTogglesMenuItem(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForMenu(t)
	router := setupMenuRouter(db, 1, models.RoleChef)

	payload, _ := json.Marshal(map[string]interface{}{
		"name":             "Sate Ayam",
		"price":            30000,
		"category":         "main",
		"preparation_time": 20,
	})
	req, _ := http.NewRequest("POST", "/api/menu", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp struct {
		Data models.MenuItem `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	assert.True(t, createResp.Data.Available)
	itemID := createResp.Data.ID

	// Toggle available = false
	toggle, _ := json.Marshal(map[string]interface{}{"available": false})
	req, _ = http.NewRequest("PATCH", "/api/menu/"+strconv.Itoa(int(itemID)), bytes.NewBuffer(toggle))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var item models.MenuItem
	assert.NoError(t, db.First(&item, itemID).Error)
	assert.False(t, item.Available)
}

func TestChefCannotEditOthersMenu(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForMenu(t)

	other := models.User{Name: "Chef Budi", Email: "budi@kitchen.test", Password: "x", Role: models.RoleChef}
	db.Create(&other)
	router := setupMenuRouter(db, other.ID, models.RoleChef)

	payload, _ := json.Marshal(map[string]interface{}{"price": 1})
	req, _ := http.NewRequest("PATCH", "/api/menu/1", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
