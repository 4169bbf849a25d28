package models

import (
	"github.com/erp/notify/internal/domain/identity"
)

// UserModel is the persistence model for the recipient directory
type UserModel struct {
	BaseModel
	Username string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email    string `gorm:"type:varchar(255);index"`
	Phone    string `gorm:"type:varchar(30)"`
	FullName string `gorm:"type:varchar(200)"`
	Active   bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain user
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity: m.BaseModel.ToDomain(),
		Username:   m.Username,
		Email:      m.Email,
		Phone:      m.Phone,
		FullName:   m.FullName,
		Active:     m.Active,
	}
}

// UserModelFromDomain converts a domain user to its persistence model
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		FullName: u.FullName,
		Active:   u.Active,
	}
	m.FromDomain(u.BaseEntity)
	return m
}
