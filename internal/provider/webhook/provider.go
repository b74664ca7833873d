// Package webhook implements the business-operations provider against
// the n8n workflow webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
	"github.com/flatout-solutions/rental-assistant/internal/provider"
)

// Wire date formats required by the workflow webhooks. The day-edge
// times are appended as literals; inside a time layout their digits
// would be parsed as reference chunks.
const (
	wireWindowLayout   = "2006-01-02T00:00:00Z"
	wireOrderDay       = "2006-01-02"
	wireDayStart       = "T00:00:00"
	wireDayEnd         = "T23:59:59"
	callerID           = "rental-assistant"
	callerType         = "web_app"
	defaultDoneMessage = "Reservation completed successfully"
)

// Endpoints are the workflow webhook URLs, fixed at configuration time.
type Endpoints struct {
	ProductsList        string
	ProductAvailability string
	CreateOrder         string
}

// Provider implements provider.Operations against the workflow webhooks.
type Provider struct {
	endpoints   Endpoints
	countryCode string
	http        *provider.RetryingClient
}

var _ provider.Operations = (*Provider)(nil)

// New creates a webhook-backed provider.
func New(endpoints Endpoints, countryCode string, rc *provider.RetryingClient) *Provider {
	return &Provider{
		endpoints:   endpoints,
		countryCode: countryCode,
		http:        rc,
	}
}

// envelope is the wire shape every workflow call expects.
type envelope struct {
	Call struct {
		CallID   string `json:"call_id"`
		CallType string `json:"call_type"`
	} `json:"call"`
	Name string `json:"name"`
	Args any    `json:"args,omitempty"`
}

func (p *Provider) call(ctx context.Context, endpoint, name string, args any, out any) error {
	env := envelope{Name: name, Args: args}
	env.Call.CallID = callerID
	env.Call.CallType = callerType

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode webhook request %s: %w", name, err)
	}
	body, err := p.http.Do(func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unexpected response from webhook %s: %w", name, err)
	}
	return nil
}

// ListEquipmentGroups returns all equipment groups published by the
// products-list workflow.
func (p *Provider) ListEquipmentGroups(ctx context.Context) (*domain.GroupList, error) {
	var resp struct {
		ProductGroups []domain.EquipmentGroup `json:"product_groups"`
	}
	if err := p.call(ctx, p.endpoints.ProductsList, "get_products_list", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to retrieve equipment groups: %w", err)
	}
	return &domain.GroupList{
		Groups:     resp.ProductGroups,
		TotalCount: len(resp.ProductGroups),
	}, nil
}

// availabilityWire is the product-availability workflow response. Numeric
// fields arrive as numbers or strings depending on the workflow node, so
// they are decoded leniently.
type availabilityWire struct {
	ProductID        string     `json:"productId"`
	ProductName      string     `json:"productName"`
	ProductBasePrice flexNumber `json:"productBasePrice"`
	Available        flexNumber `json:"available"`
}

func (p *Provider) fetchAvailability(ctx context.Context, groupID string, window domain.RentalWindow) (*availabilityWire, error) {
	args := map[string]string{
		"group_id":  groupID,
		"from_date": window.From.Format(wireWindowLayout),
		"till_date": window.To.Format(wireWindowLayout),
	}
	var resp availabilityWire
	if err := p.call(ctx, p.endpoints.ProductAvailability, "product_availability", args, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetEquipmentDetails returns product details, availability and a price
// quote for the window. The workflow requires a window; a same-day window
// still rents for one day.
func (p *Provider) GetEquipmentDetails(ctx context.Context, id string, window *domain.RentalWindow) (*domain.EquipmentDetails, error) {
	if window == nil {
		return nil, fmt.Errorf("from_date and to_date are required to get equipment details")
	}

	resp, err := p.fetchAvailability(ctx, id, *window)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment details: %w", err)
	}

	days := window.Days()
	basePrice := float64(resp.ProductBasePrice)
	return &domain.EquipmentDetails{
		GroupID:   id,
		ProductID: resp.ProductID,
		Name:      resp.ProductName,
		BasePrice: basePrice,
		Availability: &domain.Availability{
			Available: int(resp.Available),
		},
		Quote: &domain.RentalQuote{
			BasePrice:  basePrice,
			TotalPrice: basePrice * float64(days),
			RentalDays: days,
		},
	}, nil
}

// CheckAvailability checks stock through the availability workflow.
func (p *Provider) CheckAvailability(ctx context.Context, id string, window domain.RentalWindow) (*domain.Availability, error) {
	resp, err := p.fetchAvailability(ctx, id, window)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	return &domain.Availability{Available: int(resp.Available)}, nil
}

// GetPricing is not exposed by the workflow backend; pricing comes back
// with get_equipment_details for a concrete rental window.
func (p *Provider) GetPricing(ctx context.Context, id string) (*domain.PricingInfo, error) {
	return nil, fmt.Errorf("pricing requires rental dates on this backend; use get_equipment_details with from_date and to_date")
}

// CreateCustomer is not exposed by the workflow backend; the customer
// profile is created as part of the reservation workflow.
func (p *Provider) CreateCustomer(ctx context.Context, info domain.CustomerInfo) (*domain.Customer, error) {
	return nil, fmt.Errorf("customer profiles are created as part of create_reservation on this backend")
}

// CreateReservation places the reservation as one atomic workflow call.
func (p *Provider) CreateReservation(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error) {
	if req.Customer == nil {
		return nil, fmt.Errorf("customer_info is required")
	}
	window, err := domain.ParseRentalWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
	}

	args := map[string]string{
		"client_name":  req.Customer.Name,
		"client_email": req.Customer.Email,
		"client_phone": provider.NormalizePhone(req.Customer.Phone, p.countryCode),
		"product_id":   req.ProductID,
		"from_date":    window.From.Format(wireOrderDay) + wireDayStart,
		"till_date":    window.To.Format(wireOrderDay) + wireDayEnd,
	}

	var resp struct {
		Result string `json:"result"`
	}
	if err := p.call(ctx, p.endpoints.CreateOrder, "create_order", args, &resp); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	message := resp.Result
	if message == "" {
		message = defaultDoneMessage
	}
	return &domain.Reservation{Success: true, Message: message}, nil
}

// flexNumber decodes a JSON number that may arrive quoted.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = flexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexNumber(v)
	return nil
}
