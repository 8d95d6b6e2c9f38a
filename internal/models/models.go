package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KVRecord backs the key-value cart storage when it lives in a database.
type KVRecord struct {
	Key       string    `gorm:"primaryKey;size:191"  json:"key"`
	Value     []byte    `gorm:"not null"             json:"value"`
	UpdatedAt time.Time `gorm:"not null"             json:"updated_at"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}

// Book is the slice of the catalog checkout needs: who sells it.
type Book struct {
	ID       string    `gorm:"primaryKey"      json:"id"`
	Title    string    `gorm:"not null"        json:"title"`
	Author   string    `gorm:"not null"        json:"author"`
	Price    float64   `gorm:"not null"        json:"price"`
	SellerID uuid.UUID `gorm:"index;not null"  json:"seller_id"`
}

func (Book) TableName() string {
	return "books"
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Order is one purchased cart line. A checkout writes one per line.
type Order struct {
	ID            uuid.UUID     `gorm:"primaryKey"                  json:"id"`
	BuyerID       uuid.UUID     `gorm:"index;not null"              json:"buyer_id"`
	SellerID      uuid.UUID     `gorm:"index;not null"              json:"seller_id"`
	BookID        string        `gorm:"not null"                    json:"book_id"`
	Title         string        `gorm:"not null"                    json:"title"`
	Quantity      int           `gorm:"not null;check:quantity>0"   json:"quantity"`
	Amount        float64       `gorm:"not null"                    json:"amount"`
	PaymentMethod PaymentMethod `gorm:"not null"                    json:"payment_method"`
	Status        OrderStatus   `gorm:"not null;default:pending"    json:"status"`
	FullName      string        `gorm:"not null"                    json:"full_name"`
	Address       string        `gorm:"not null"                    json:"address"`
	Phone         string        `gorm:"not null"                    json:"phone"`
	CreatedAt     time.Time     `gorm:"index;not null"              json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// Notification is an inbox entry shown on the buyer's notifications page.
type Notification struct {
	ID        uuid.UUID `gorm:"primaryKey"          json:"id"`
	UserID    uuid.UUID `gorm:"index;not null"      json:"user_id"`
	Type      string    `gorm:"not null"            json:"type"`
	Title     string    `gorm:"not null"            json:"title"`
	Message   string    `gorm:"not null"            json:"message"`
	Read      bool      `gorm:"default:false"       json:"read"`
	CreatedAt time.Time `gorm:"not null"            json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&KVRecord{}, &Book{}, &Order{}, &Notification{}}
}
