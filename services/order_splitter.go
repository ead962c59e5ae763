package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/cloud-kitchen-app/models"
	"github.com/yeremiapane/cloud-kitchen-app/utils"
)

// Placeholder alamat dari frontend lama; dianggap sama dengan "tidak diisi".
const defaultAddressPlaceholder = "Student Hostel"

// Buffer estimasi siap untuk semua order hasil split.
const readyTimeBuffer = 30 * time.Minute

type CartLine struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	Items               []CartLine `json:"items" binding:"required,min=1"`
	DeliveryAddress     string     `json:"delivery_address"`
	SpecialInstructions string     `json:"special_instructions"`
}

// OrderDraft adalah hasil murni SplitCart sebelum persist: satu draft per
// chef, dengan nomor order tersendiri dan total yang sudah dihitung.
type OrderDraft struct {
	OrderNumber string
	ChefID      uint
	Items       []models.OrderItem
	TotalAmount float64
}

// SplitCart membagi isi keranjang menjadi satu draft order per chef.
// Grup mengikuti urutan kemunculan chef di keranjang; tiap grup mendapat
// suffix huruf (-A, -B, ...) di belakang baseNumber. Fungsi ini tidak
// melakukan I/O: semua menu item harus sudah ada di map menu.
func SplitCart(baseNumber string, lines []CartLine, menu map[uint]models.MenuItem) []OrderDraft {
	var chefOrder []uint
	grouped := make(map[uint][]CartLine)

	for _, line := range lines {
		chefID := menu[line.MenuItemID].ChefID
		if _, seen := grouped[chefID]; !seen {
			chefOrder = append(chefOrder, chefID)
		}
		grouped[chefID] = append(grouped[chefID], line)
	}

	drafts := make([]OrderDraft, 0, len(chefOrder))
	for i, chefID := range chefOrder {
		draft := OrderDraft{
			OrderNumber: fmt.Sprintf("%s-%c", baseNumber, 'A'+i),
			ChefID:      chefID,
		}
		for _, line := range grouped[chefID] {
			item := menu[line.MenuItemID]
			subtotal := item.Price * float64(line.Quantity)
			draft.Items = append(draft.Items, models.OrderItem{
				MenuItemID: item.ID,
				Quantity:   line.Quantity,
				Price:      item.Price,
				Subtotal:   subtotal,
			})
			draft.TotalAmount += subtotal
		}
		drafts = append(drafts, draft)
	}

	return drafts
}

// GenerateOrderNumber -> nomor dasar yang dibagi semua order hasil satu checkout
func GenerateOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateOrder memproses checkout: resolve menu item, split per chef, resolve
// alamat, lalu persist semua order dalam satu transaksi. Item yang tidak
// ditemukan atau tidak tersedia menggagalkan seluruh checkout; tidak ada
// order parsial yang tersimpan.
func (os *OrderService) CreateOrder(studentID uint, req CheckoutRequest) ([]models.Order, error) {
	var student models.User
	if err := os.DB.First(&student, studentID).Error; err != nil {
		return nil, fmt.Errorf("student not found: %w", err)
	}

	// Resolve seluruh menu item lebih dulu; gagal satu = gagal semua
	menu := make(map[uint]models.MenuItem)
	for _, line := range req.Items {
		if _, ok := menu[line.MenuItemID]; ok {
			continue
		}
		var item models.MenuItem
		if err := os.DB.First(&item, line.MenuItemID).Error; err != nil {
			return nil, &ItemNotFoundError{MenuItemID: line.MenuItemID}
		}
		if !item.Available {
			return nil, &ItemUnavailableError{Name: item.Name}
		}
		menu[line.MenuItemID] = item
	}

	baseNumber := GenerateOrderNumber()
	drafts := SplitCart(baseNumber, req.Items, menu)
	address := resolveDeliveryAddress(req.DeliveryAddress, student)
	estimatedReady := time.Now().Add(readyTimeBuffer)

	var created []models.Order
	err := os.DB.Transaction(func(tx *gorm.DB) error {
		for _, draft := range drafts {
			order := models.Order{
				OrderNumber:         draft.OrderNumber,
				StudentID:           student.ID,
				Status:              models.OrderPending,
				TotalAmount:         draft.TotalAmount,
				DeliveryAddress:     address,
				SpecialInstructions: req.SpecialInstructions,
				EstimatedReadyTime:  &estimatedReady,
				OrderItems:          draft.Items,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			created = append(created, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Checkout by student %d created %d order(s), base number %s",
		student.ID, len(created), baseNumber)

	return created, nil
}

// resolveDeliveryAddress -> pakai alamat eksplisit kecuali kosong/placeholder;
// kalau tidak, susun dari profil student (hostel + kamar, lalu alamat bebas),
// fallback terakhir nama kampus.
func resolveDeliveryAddress(requested string, student models.User) string {
	requested = strings.TrimSpace(requested)
	if requested != "" && requested != defaultAddressPlaceholder {
		return requested
	}

	var b strings.Builder
	if student.HostelName != nil && strings.TrimSpace(*student.HostelName) != "" {
		b.WriteString(*student.HostelName)
		if student.RoomNumber != nil && strings.TrimSpace(*student.RoomNumber) != "" {
			b.WriteString(", Room ")
			b.WriteString(*student.RoomNumber)
		}
	}
	if student.Address != nil && strings.TrimSpace(*student.Address) != "" {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(*student.Address)
	}
	if b.Len() > 0 {
		return b.String()
	}
	if student.College != nil {
		return *student.College
	}
	return ""
}
