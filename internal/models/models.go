package models

import (
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleAttendant = "attendant"
)

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null"     json:"name"`
	Description string    `gorm:"not null;default:''"      json:"description"`
	CreatedAt   time.Time `                                json:"date_created"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null"     json:"name"`
	Price       int64     `gorm:"not null"                 json:"price"`
	Stock       int64     `gorm:"not null"                 json:"stock"`
	MinStock    int64     `gorm:"not null;default:0"       json:"min_stock"`
	Description string    `gorm:"not null;default:''"      json:"description"`
	CategoryID  uint      `gorm:"index;not null"           json:"category_id"`
	Category    *Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	CreatedAt   time.Time `                                json:"date_created"`
	UpdatedAt   time.Time `                                json:"-"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `                                json:"date_created"`
}

// SaleRecord is immutable once created.
type SaleRecord struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Items       int64          `gorm:"not null"                 json:"items"`
	Total       int64          `gorm:"not null"                 json:"total"`
	AttendantID uint           `gorm:"index;not null"           json:"attendant_id"`
	Attendant   *User          `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	LineItems   []SaleLineItem `gorm:"foreignKey:SaleID"        json:"-"`
	CreatedAt   time.Time      `                                json:"date_created"`
}

// SaleLineItem snapshots product name and price at sale time, so later
// catalog edits never rewrite history.
type SaleLineItem struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName string    `gorm:"not null"                 json:"name"`
	Price       int64     `gorm:"not null"                 json:"price"`
	Quantity    int64     `gorm:"not null"                 json:"quantity"`
	LineTotal   int64     `gorm:"not null"                 json:"cost"`
	SaleID      uint      `gorm:"index;not null"           json:"sale_id"`
	CreatedAt   time.Time `                                json:"-"`
}

func (SaleLineItem) TableName() string { return "sale_record_items" }

type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"          json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	CreatedAt time.Time `                           json:"revoked_at"`
}

func All() []any {
	return []any{&Category{}, &Product{}, &User{}, &SaleRecord{}, &SaleLineItem{}, &RevokedToken{}}
}
