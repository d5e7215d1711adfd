package dto

type OrderLineRequestDTO struct {
	ProductID int `json:"product_id" example:"1"`
	Quantity  int `json:"quantity" example:"2"`
}

type CreateOrderRequestDTO struct {
	OrderLines []OrderLineRequestDTO `json:"order_lines"`
}

type CreateOrderResponseDTO struct {
	ID         int   `json:"id" example:"42"`
	TotalPrice int64 `json:"total_price" example:"1800"`
}

type OrderLineResponseDTO struct {
	ProductID     int     `json:"product_id" example:"1"`
	Quantity      int     `json:"quantity" example:"2"`
	Price         int64   `json:"price" example:"1000"`
	DiscountRatio float64 `json:"discount_ratio" example:"0.9"`
}

type OrderResponseDTO struct {
	ID         int                    `json:"id" example:"42"`
	Code       string                 `json:"code" example:"2024010203040512"`
	TotalPrice int64                  `json:"total_price" example:"1800"`
	Status     string                 `json:"status" example:"PENDING"`
	CreatedAt  string                 `json:"created_at" example:"2024-01-02T03:04:05Z"`
	PaidAt     *string                `json:"paid_at,omitempty" example:"2024-01-02T03:05:00Z"`
	Lines      []OrderLineResponseDTO `json:"order_lines,omitempty"`
}

// MaxPaymentKeyLen is the width of orders.payment_key.
const MaxPaymentKeyLen = 128

type ConfirmOrderRequestDTO struct {
	PaymentKey string `json:"payment_key" example:"3f1c9a0e-pay"`
}

type DetailResponseDTO struct {
	Detail string `json:"detail" example:"ok"`
}
