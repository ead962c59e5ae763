package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.ChatSession{},
		&models.ChatMessage{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// seedTwoChefKitchen -> 1 student + 2 chef dengan menunya masing-masing
func seedTwoChefKitchen(t *testing.T, db *gorm.DB) (student, chefA, chefB models.User) {
	t.Helper()

	hostel := "Block C"
	room := "214"
	student = models.User{
		Name: "Rina", Email: "rina@campus.test", Password: "x",
		Role: models.RoleStudent, HostelName: &hostel, RoomNumber: &room,
	}
	chefA = models.User{Name: "Chef Andi", Email: "andi@kitchen.test", Password: "x", Role: models.RoleChef}
	chefB = models.User{Name: "Chef Budi", Email: "budi@kitchen.test", Password: "x", Role: models.RoleChef}
	db.Create(&student)
	db.Create(&chefA)
	db.Create(&chefB)

	db.Create(&models.MenuItem{ChefID: chefA.ID, Name: "Nasi Goreng", Price: 25000, Available: true})
	db.Create(&models.MenuItem{ChefID: chefA.ID, Name: "Mie Ayam", Price: 18000, Available: true})
	db.Create(&models.MenuItem{ChefID: chefB.ID, Name: "Sate Ayam", Price: 30000, Available: true})
	return student, chefA, chefB
}

func TestSplitCartGroupsByChef(t *testing.T) {
	menu := map[uint]models.MenuItem{
		1: {ID: 1, ChefID: 10, Price: 25000},
		2: {ID: 2, ChefID: 20, Price: 30000},
		3: {ID: 3, ChefID: 10, Price: 18000},
	}
	lines := []CartLine{
		{MenuItemID: 1, Quantity: 2},
		{MenuItemID: 2, Quantity: 1},
		{MenuItemID: 3, Quantity: 1},
	}

	drafts := SplitCart("ORD-ABCD1234", lines, menu)

	assert.Len(t, drafts, 2)
	assert.Equal(t, "ORD-ABCD1234-A", drafts[0].OrderNumber)
	assert.Equal(t, "ORD-ABCD1234-B", drafts[1].OrderNumber)

	// Grup mengikuti urutan kemunculan chef di keranjang
	assert.Equal(t, uint(10), drafts[0].ChefID)
	assert.Equal(t, uint(20), drafts[1].ChefID)

	assert.Len(t, drafts[0].Items, 2)
	assert.Len(t, drafts[1].Items, 1)
	assert.Equal(t, float64(2*25000+18000), drafts[0].TotalAmount)
	assert.Equal(t, float64(30000), drafts[1].TotalAmount)

	// Total tiap draft = jumlah subtotal itemnya
	for _, d := range drafts {
		var sum float64
		for _, item := range d.Items {
			sum += item.Subtotal
		}
		assert.Equal(t, d.TotalAmount, sum)
	}
}

func TestSplitCartSingleChef(t *testing.T) {
	menu := map[uint]models.MenuItem{
		1: {ID: 1, ChefID: 10, Price: 15000},
	}
	drafts := SplitCart("ORD-XYZ", []CartLine{{MenuItemID: 1, Quantity: 3}}, menu)

	assert.Len(t, drafts, 1)
	assert.Equal(t, "ORD-XYZ-A", drafts[0].OrderNumber)
	assert.Equal(t, float64(45000), drafts[0].TotalAmount)
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	num := GenerateOrderNumber()
	assert.True(t, strings.HasPrefix(num, "ORD-"))
	assert.Len(t, num, len("ORD-")+8)
	assert.Equal(t, strings.ToUpper(num), num)

	// Dua nomor berturut-turut tidak boleh sama
	assert.NotEqual(t, num, GenerateOrderNumber())
}

func TestCreateOrderSplitsPerChef(t *testing.T) {
	db := setupServiceTestDB(t)
	student, _, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	created, err := svc.CreateOrder(student.ID, CheckoutRequest{
		Items: []CartLine{
			{MenuItemID: 1, Quantity: 1}, // chef A
			{MenuItemID: 3, Quantity: 2}, // chef B
			{MenuItemID: 2, Quantity: 1}, // chef A lagi
		},
	})
	assert.NoError(t, err)
	assert.Len(t, created, 2)

	assert.True(t, strings.HasSuffix(created[0].OrderNumber, "-A"))
	assert.True(t, strings.HasSuffix(created[1].OrderNumber, "-B"))
	for _, order := range created {
		assert.Equal(t, models.OrderPending, order.Status)
		assert.NotNil(t, order.EstimatedReadyTime)
	}
	assert.Equal(t, float64(25000+18000), created[0].TotalAmount)
	assert.Equal(t, float64(2*30000), created[1].TotalAmount)

	// Tidak ada order yang mencampur item beda chef
	for _, order := range created {
		var full models.Order
		assert.NoError(t, db.Preload("OrderItems").Preload("OrderItems.MenuItem").First(&full, order.ID).Error)
		chefID := full.OrderItems[0].MenuItem.ChefID
		for _, item := range full.OrderItems {
			assert.Equal(t, chefID, item.MenuItem.ChefID)
		}
	}
}

func TestCreateOrderUnknownItemFailsWhole(t *testing.T) {
	db := setupServiceTestDB(t)
	student, _, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	_, err := svc.CreateOrder(student.ID, CheckoutRequest{
		Items: []CartLine{
			{MenuItemID: 1, Quantity: 1},
			{MenuItemID: 999, Quantity: 1},
		},
	})

	var notFound *ItemNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(999), notFound.MenuItemID)

	// Checkout atomik: item valid pun tidak boleh tersimpan
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateOrderUnavailableItemFailsWhole(t *testing.T) {
	db := setupServiceTestDB(t)
	student, chefA, _ := seedTwoChefKitchen(t, db)
	svc := NewOrderService(db, NewChatService(db), nil)

	soldOut := models.MenuItem{ChefID: chefA.ID, Name: "Rendang", Price: 40000, Available: false}
	db.Create(&soldOut)

	_, err := svc.CreateOrder(student.ID, CheckoutRequest{
		Items: []CartLine{
			{MenuItemID: 1, Quantity: 1},
			{MenuItemID: soldOut.ID, Quantity: 1},
		},
	})

	var unavailable *ItemUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Rendang", unavailable.Name)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestResolveDeliveryAddress(t *testing.T) {
	hostel := "Block C"
	room := "214"
	address := "Jl. Kenanga 5"
	college := "Politeknik Negeri"

	full := models.User{HostelName: &hostel, RoomNumber: &room, Address: &address, College: &college}
	collegeOnly := models.User{College: &college}

	// Alamat eksplisit menang
	assert.Equal(t, "Warung depan", resolveDeliveryAddress("Warung depan", full))

	// Placeholder frontend dianggap kosong
	assert.Equal(t, "Block C, Room 214, Jl. Kenanga 5", resolveDeliveryAddress("Student Hostel", full))
	assert.Equal(t, "Block C, Room 214, Jl. Kenanga 5", resolveDeliveryAddress("", full))

	// Fallback terakhir nama kampus
	assert.Equal(t, "Politeknik Negeri", resolveDeliveryAddress("", collegeOnly))
	assert.Equal(t, "", resolveDeliveryAddress("", models.User{}))
}
