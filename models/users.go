package models

import "time"

// Role adalah closed set untuk dispatch role di authorization boundary.
// Jangan menambah nilai tanpa meng-update switch di services.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleChef    Role = "CHEF"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole -> validasi string role dari token/request
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleChef, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Email     string `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	Role      Role   `gorm:"type:varchar(20);not null" json:"role"`
	Phone     string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Profil student (dipakai untuk resolusi alamat pengiriman saat checkout)
	StudentNumber *string `gorm:"type:varchar(50)" json:"student_number,omitempty"`
	College       *string `gorm:"type:varchar(255)" json:"college,omitempty"`
	HostelName    *string `gorm:"type:varchar(255)" json:"hostel_name,omitempty"`
	RoomNumber    *string `gorm:"type:varchar(50)" json:"room_number,omitempty"`
	Address       *string `gorm:"type:text" json:"address,omitempty"`

	// Profil chef
	Specialty *string `gorm:"type:varchar(255)" json:"specialty,omitempty"`
}
