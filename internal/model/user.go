package model

import (
	"strings"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin           UserRole = "admin"
	RolePropertyManager UserRole = "property_manager"
)

type User struct {
	gorm.Model
	Email    string   `json:"email" gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Name     string   `json:"name" gorm:"not null"`
	Phone    string   `json:"phone"`
	Role     UserRole `json:"role" gorm:"not null;default:property_manager"`
	IsActive bool     `json:"is_active" gorm:"default:true"`

	// İlişkiler
	Properties []Property `json:"-" gorm:"foreignKey:AssignedManagerID"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManage reports whether the user may read or change the given property.
// Property managers are limited to the properties assigned to them.
func (u *User) CanManage(p *Property) bool {
	if u.IsAdmin() {
		return true
	}
	return p.AssignedManagerID != nil && *p.AssignedManagerID == u.ID
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"email": u.Email,
		"name":  strings.TrimSpace(u.Name),
		"phone": u.Phone,
		"role":  u.Role,
	}
}
