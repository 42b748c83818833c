package events

const (
	TypeSaleCreated    = "sale_created"
	TypeProductCreated = "product_created"
	TypeProductUpdated = "product_updated"
	TypeProductDeleted = "product_deleted"
	TypeUserRegistered = "user_registered"
)

type SaleLine struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
	Cost     int64  `json:"cost"`
}

type SaleCreated struct {
	Type        string     `json:"type"`
	SaleID      uint       `json:"saleID"`
	AttendantID uint       `json:"attendantID"`
	Items       int64      `json:"items"`
	Total       int64      `json:"total"`
	Lines       []SaleLine `json:"lines"`
}

type ProductChanged struct {
	Type      string `json:"type"`
	ProductID uint   `json:"productID"`
	Name      string `json:"name,omitempty"`
	Stock     int64  `json:"stock,omitempty"`
}

type UserRegistered struct {
	Type     string `json:"type"`
	UserID   uint   `json:"userID"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
