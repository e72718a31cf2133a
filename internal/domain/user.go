package domain

import "time"

// Role — роль пользователя в магазине.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User — зарегистрированный пользователь.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin сообщает, обладает ли пользователь административными правами.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
