package transport

type AddItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CheckoutRequest struct {
	BasketID uint `json:"basket_id"`
}

type PayRequest struct {
	PaymentMethod string `json:"payment_method"`
	CardNumber    string `json:"card_number"`
	CardName      string `json:"card_name"`
	CardExpiry    string `json:"card_expiry"`
	CardCVV       string `json:"card_cvv"`
	PhoneNumber   string `json:"phone_number"`
	OTP           string `json:"otp"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type Category struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type ProductSnapshot struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Price    string    `json:"price"`
	NewPrice *string   `json:"new_price"`
	Cover    string    `json:"cover"`
	Category *Category `json:"category"`
}

type BasketItem struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	Quantity  uint            `json:"quantity"`
	LineTotal string          `json:"line_total"`
}

type Basket struct {
	ID         uint         `json:"id"`
	TotalPrice string       `json:"total_price"`
	Items      []BasketItem `json:"items"`
}

type CheckoutResponse struct {
	OrderID    uint   `json:"order_id"`
	TotalPrice string `json:"total_price"`
	Status     string `json:"status"`
}

type OrderSummary struct {
	ID            uint    `json:"id"`
	Status        string  `json:"status"`
	TotalPrice    string  `json:"total_price"`
	PaymentMethod string  `json:"payment_method"`
	TransactionID *string `json:"transaction_id"`
	ItemCount     int     `json:"item_count"`
	CreatedAt     string  `json:"created_at"`
}

type OrderLine struct {
	ID                uint   `json:"id"`
	ProductID         uint   `json:"product_id"`
	Title             string `json:"title"`
	Quantity          uint   `json:"quantity"`
	UnitPrice         string `json:"unit_price"`
	CheckoutUnitPrice string `json:"checkout_unit_price"`
	Subtotal          string `json:"subtotal"`
}

type OrderDetail struct {
	ID            uint        `json:"id"`
	Status        string      `json:"status"`
	TotalPrice    string      `json:"total_price"`
	PaymentMethod string      `json:"payment_method"`
	TransactionID *string     `json:"transaction_id"`
	CreatedAt     string      `json:"created_at"`
	Items         []OrderLine `json:"items"`
	Subtotal      string      `json:"subtotal"`
}

type PayResponse struct {
	OrderID          uint    `json:"order_id"`
	Status           string  `json:"status"`
	PaymentMethod    string  `json:"payment_method"`
	TransactionID    *string `json:"transaction_id"`
	Message          string  `json:"message"`
	ConfirmationCode string  `json:"confirmation_code,omitempty"`
}

type ReceiptLine struct {
	ProductID         uint   `json:"product_id"`
	Title             string `json:"title"`
	Quantity          uint   `json:"quantity"`
	UnitPrice         string `json:"unit_price"`
	LineTotal         string `json:"line_total"`
	CheckoutUnitPrice string `json:"checkout_unit_price"`
}

type Receipt struct {
	OrderID          uint          `json:"order_id"`
	Status           string        `json:"status"`
	PaymentMethod    string        `json:"payment_method"`
	TransactionID    *string       `json:"transaction_id"`
	CreatedAt        string        `json:"created_at"`
	CreatedAtDisplay string        `json:"created_at_display"`
	Lines            []ReceiptLine `json:"lines"`
	Subtotal         string        `json:"subtotal"`
	TotalPrice       string        `json:"total_price"`
}
