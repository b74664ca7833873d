package domain

import (
	"fmt"
	"time"
)

// EquipmentGroup is one rentable equipment category.
type EquipmentGroup struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug,omitempty"`
	Description string  `json:"description,omitempty"`
	BasePrice   float64 `json:"base_price"`
	StockCount  int     `json:"stock_count"`
	PhotoURL    string  `json:"photo_url,omitempty"`
}

// GroupList is the result of listing equipment groups.
type GroupList struct {
	Groups     []EquipmentGroup `json:"equipment_groups"`
	TotalCount int              `json:"total_count"`
}

// StockItem is an individually tracked unit of a product.
type StockItem struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
}

// Product is an individually bookable unit inside an equipment group.
type Product struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Price      float64     `json:"price"`
	StockCount int         `json:"stock_count"`
	StockItems []StockItem `json:"stock_items,omitempty"`
}

// Availability is the result of an availability check.
type Availability struct {
	Available  int `json:"available"`
	StockCount int `json:"stock_count"`
	Needed     int `json:"needed"`
	Planned    int `json:"planned"`
}

// RentalQuote is the price computed for a concrete rental window.
type RentalQuote struct {
	BasePrice  float64 `json:"base_price"`
	TotalPrice float64 `json:"total_price"`
	RentalDays int     `json:"rental_days"`
}

// EquipmentDetails is the result of a details lookup. Products is filled by
// the direct-REST backend; Availability and Quote are filled when the
// lookup carries a rental window.
type EquipmentDetails struct {
	GroupID      string        `json:"group_id,omitempty"`
	ProductID    string        `json:"product_id,omitempty"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	BasePrice    float64       `json:"base_price"`
	Products     []Product     `json:"products,omitempty"`
	Availability *Availability `json:"availability,omitempty"`
	Quote        *RentalQuote  `json:"pricing,omitempty"`
}

// PriceTile is one entry in a product's price structure. Price is always
// PriceInCents converted to currency units.
type PriceTile struct {
	Name         string  `json:"name"`
	Period       string  `json:"period"`
	Quantity     int     `json:"quantity"`
	PriceInCents int     `json:"price_in_cents"`
	Price        float64 `json:"price"`
}

// PricingInfo is the result of a pricing lookup.
type PricingInfo struct {
	Pricing []PriceTile `json:"pricing"`
}

// CustomerInfo is the input for creating a customer profile.
type CustomerInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	Zipcode  string `json:"zipcode,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Customer is a created customer profile.
type Customer struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// ReservationRequest is the backend-agnostic reservation input. Either
// CustomerID or Customer must be present; which one is required depends on
// the backend.
type ReservationRequest struct {
	CustomerID string        `json:"customer_id,omitempty"`
	Customer   *CustomerInfo `json:"customer_info,omitempty"`
	ProductID  string        `json:"product_id"`
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
	Quantity   int           `json:"quantity,omitempty"`
}

// Reservation is the composite reservation result. The direct-REST backend
// fills the order fields; the webhook backend fills Success and Message.
type Reservation struct {
	OrderID       string   `json:"order_id,omitempty"`
	Status        string   `json:"status,omitempty"`
	GrandTotal    *float64 `json:"grand_total,omitempty"`
	PaymentStatus string   `json:"payment_status,omitempty"`
	Success       bool     `json:"success,omitempty"`
	Message       string   `json:"message,omitempty"`
}

// dateLayout is the calendar-date form accepted on every operation input.
const dateLayout = "2006-01-02"

// RentalWindow is a validated calendar-date rental period.
type RentalWindow struct {
	From time.Time
	To   time.Time
}

// ParseRentalWindow parses a YYYY-MM-DD date pair. The end date may not
// precede the start date.
func ParseRentalWindow(from, to string) (RentalWindow, error) {
	f, err := time.Parse(dateLayout, from)
	if err != nil {
		return RentalWindow{}, fmt.Errorf("invalid from_date %q: expected YYYY-MM-DD", from)
	}
	t, err := time.Parse(dateLayout, to)
	if err != nil {
		return RentalWindow{}, fmt.Errorf("invalid to_date %q: expected YYYY-MM-DD", to)
	}
	if t.Before(f) {
		return RentalWindow{}, fmt.Errorf("to_date %s precedes from_date %s", to, from)
	}
	return RentalWindow{From: f, To: t}, nil
}

// Days returns the rental duration in days. A same-day window still rents
// for one day, never zero.
func (w RentalWindow) Days() int {
	days := int(w.To.Sub(w.From).Hours() / 24)
	if days == 0 {
		days = 1
	}
	return days
}
