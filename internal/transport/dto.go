package transport

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductRequest names its category either by id or by name.
type ProductRequest struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	MinStock    int64  `json:"min_stock"`
	Description string `json:"description"`
	CategoryID  uint   `json:"category_id"`
	Category    string `json:"category"`
}

type CartLine struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type CreateSaleRequest struct {
	Products []CartLine `json:"products"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}
