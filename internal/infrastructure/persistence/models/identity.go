package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User entity
type UserModel struct {
	BaseModel
	Name         string        `gorm:"type:varchar(100);not null"`
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'customer';index"`
	DateOfBirth  *time.Time    `gorm:"type:date"`
	Gender       string        `gorm:"type:varchar(10)"`
	Phone        string        `gorm:"type:varchar(20)"`
	Address      string        `gorm:"type:varchar(500)"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		Profile: identity.Profile{
			DateOfBirth: m.DateOfBirth,
			Gender:      identity.Gender(m.Gender),
			Phone:       m.Phone,
			Address:     m.Address,
		},
		LastLoginAt: m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.DateOfBirth = u.Profile.DateOfBirth
	m.Gender = string(u.Profile.Gender)
	m.Phone = u.Profile.Phone
	m.Address = u.Profile.Address
	m.LastLoginAt = u.LastLoginAt
}
