package models

type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleWaiter  UserRole = "Waiter"
	RoleKitchen UserRole = "Kitchen"
	RoleCashier UserRole = "Cashier"
	RoleTest    UserRole = "Test"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleKitchen, RoleCashier, RoleTest:
		return true
	}
	return false
}

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	FullName     string   `gorm:"size:100;not null" json:"full_name"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null" json:"role"`
	Audit
}
