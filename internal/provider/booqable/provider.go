package booqable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
	"github.com/flatout-solutions/rental-assistant/internal/provider"
)

// Wire date formats required by the Booqable API.
const (
	wireDateLayout     = "02-01-2006"
	wireDateTimeLayout = "02-01-2006 15:04"
)

// Provider implements provider.Operations against the Booqable REST API.
type Provider struct {
	client      *client
	countryCode string
}

var _ provider.Operations = (*Provider)(nil)

// New creates a Booqable-backed provider. countryCode is the default
// international dialing prefix applied during phone normalization.
func New(baseURL, apiKey, countryCode string, rc *provider.RetryingClient) *Provider {
	return &Provider{
		client:      newClient(baseURL, apiKey, rc),
		countryCode: countryCode,
	}
}

type groupWire struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
	StockCount  int     `json:"stock_count"`
	PhotoURL    string  `json:"photo_url"`
	Products    []struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		BasePrice   float64 `json:"base_price"`
		StockCounts struct {
			Total int `json:"total"`
		} `json:"stock_counts"`
		StockItems []struct {
			ID         string `json:"id"`
			Identifier string `json:"identifier"`
			Status     string `json:"status"`
		} `json:"stock_items"`
	} `json:"products"`
}

// ListEquipmentGroups returns all equipment groups.
func (p *Provider) ListEquipmentGroups(ctx context.Context) (*domain.GroupList, error) {
	var resp struct {
		ProductGroups []groupWire `json:"product_groups"`
		Meta          struct {
			TotalCount int `json:"total_count"`
		} `json:"meta"`
	}
	if err := p.client.get(ctx, "product_groups", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to retrieve equipment groups: %w", err)
	}

	groups := make([]domain.EquipmentGroup, len(resp.ProductGroups))
	for i, g := range resp.ProductGroups {
		groups[i] = domain.EquipmentGroup{
			ID:          g.ID,
			Name:        g.Name,
			Slug:        g.Slug,
			Description: g.Description,
			BasePrice:   g.BasePrice,
			StockCount:  g.StockCount,
			PhotoURL:    g.PhotoURL,
		}
	}
	return &domain.GroupList{Groups: groups, TotalCount: resp.Meta.TotalCount}, nil
}

// fetchGroup probes an id as an equipment group. found is false when the
// backend does not know the id as a group, which means the id refers to
// an individual product.
func (p *Provider) fetchGroup(ctx context.Context, id string) (*groupWire, bool, error) {
	var resp struct {
		ProductGroup *groupWire `json:"product_group"`
	}
	err := p.client.get(ctx, "product_groups/"+url.PathEscape(id), nil, &resp)
	if err != nil {
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if resp.ProductGroup == nil {
		return nil, false, nil
	}
	return resp.ProductGroup, true, nil
}

// resolveProduct maps an ambiguous identifier to an individually bookable
// product id: a group id resolves to its first bookable product, a
// product id passes through. The resolution is deterministic, so every
// operation that receives the same id lands on the same product.
func (p *Provider) resolveProduct(ctx context.Context, id string) (string, error) {
	group, found, err := p.fetchGroup(ctx, id)
	if err != nil {
		return "", err
	}
	if !found || len(group.Products) == 0 {
		return id, nil
	}
	return group.Products[0].ID, nil
}

// GetEquipmentDetails returns group metadata with its constituent
// products, plus a price quote when a rental window is given.
func (p *Provider) GetEquipmentDetails(ctx context.Context, id string, window *domain.RentalWindow) (*domain.EquipmentDetails, error) {
	group, found, err := p.fetchGroup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve equipment details: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("equipment group %s not found", id)
	}

	details := &domain.EquipmentDetails{
		GroupID:     group.ID,
		Name:        group.Name,
		Description: group.Description,
		BasePrice:   group.BasePrice,
	}
	for _, prod := range group.Products {
		stockItems := make([]domain.StockItem, len(prod.StockItems))
		for i, item := range prod.StockItems {
			stockItems[i] = domain.StockItem{ID: item.ID, Identifier: item.Identifier, Status: item.Status}
		}
		details.Products = append(details.Products, domain.Product{
			ID:         prod.ID,
			Name:       prod.Name,
			Price:      prod.BasePrice,
			StockCount: prod.StockCounts.Total,
			StockItems: stockItems,
		})
	}

	if window != nil {
		days := window.Days()
		details.Quote = &domain.RentalQuote{
			BasePrice:  group.BasePrice,
			TotalPrice: group.BasePrice * float64(days),
			RentalDays: days,
		}
	}
	return details, nil
}

// CheckAvailability checks product stock for the window. Calendar dates
// are converted to the API's day-month-year wire format.
func (p *Provider) CheckAvailability(ctx context.Context, id string, window domain.RentalWindow) (*domain.Availability, error) {
	productID, err := p.resolveProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	params := url.Values{}
	params.Set("from", window.From.Format(wireDateLayout))
	params.Set("till", window.To.Format(wireDateLayout))

	var avail domain.Availability
	if err := p.client.get(ctx, "products/"+url.PathEscape(productID)+"/availability", params, &avail); err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	return &avail, nil
}

// GetPricing returns the product's price tiles with price computed from
// price_in_cents.
func (p *Provider) GetPricing(ctx context.Context, id string) (*domain.PricingInfo, error) {
	productID, err := p.resolveProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	var resp struct {
		PriceStructures []struct {
			Tiles []struct {
				Name         string `json:"name"`
				Period       string `json:"period"`
				Quantity     int    `json:"quantity"`
				PriceInCents int    `json:"price_in_cents"`
			} `json:"tiles"`
		} `json:"price_structures"`
	}
	if err := p.client.get(ctx, "products/"+url.PathEscape(productID)+"/prices", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to retrieve pricing: %w", err)
	}

	info := &domain.PricingInfo{Pricing: []domain.PriceTile{}}
	for _, structure := range resp.PriceStructures {
		for _, tile := range structure.Tiles {
			info.Pricing = append(info.Pricing, domain.PriceTile{
				Name:         tile.Name,
				Period:       tile.Period,
				Quantity:     tile.Quantity,
				PriceInCents: tile.PriceInCents,
				Price:        float64(tile.PriceInCents) / 100,
			})
		}
	}
	return info, nil
}

// CreateCustomer creates a customer profile with address and phone
// properties. The phone number is normalized first.
func (p *Provider) CreateCustomer(ctx context.Context, info domain.CustomerInfo) (*domain.Customer, error) {
	payload := map[string]any{
		"customer": map[string]any{
			"name":  info.Name,
			"email": info.Email,
			"properties_attributes": []map[string]any{
				{
					"type":     "Property::Address",
					"name":     "Main",
					"address1": info.Address1,
					"address2": info.Address2,
					"zipcode":  info.Zipcode,
					"city":     info.City,
					"country":  info.Country,
				},
				{
					"type":  "Property::Phone",
					"name":  "Phone",
					"value": provider.NormalizePhone(info.Phone, p.countryCode),
				},
			},
		},
	}

	var resp struct {
		Customer *struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"customer"`
	}
	if err := p.client.post(ctx, "customers", payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	if resp.Customer == nil {
		return nil, fmt.Errorf("failed to create customer: empty response")
	}
	return &domain.Customer{
		CustomerID: resp.Customer.ID,
		Name:       resp.Customer.Name,
		Email:      resp.Customer.Email,
	}, nil
}

type orderWire struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	GrandTotal    *float64 `json:"grand_total"`
	PaymentStatus string   `json:"payment_status"`
}

// CreateReservation places a reservation as the REST two-step protocol:
// create the order, then book the product against it. When booking fails
// the created order is left as-is and its id is reported in the error, so
// the assistant can tell the customer; a retried reservation starts a
// fresh order.
func (p *Provider) CreateReservation(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error) {
	customerID := req.CustomerID
	if customerID == "" {
		if req.Customer == nil {
			return nil, fmt.Errorf("customer_id or customer_info is required")
		}
		customer, err := p.CreateCustomer(ctx, *req.Customer)
		if err != nil {
			return nil, err
		}
		customerID = customer.CustomerID
	}

	window, err := domain.ParseRentalWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
	}

	orderPayload := map[string]any{
		"order": map[string]any{
			"customer_id": customerID,
			"starts_at":   window.From.Format(wireDateTimeLayout),
			"stops_at":    window.To.Format(wireDateTimeLayout),
		},
	}
	var orderResp struct {
		Order *orderWire `json:"order"`
	}
	if err := p.client.post(ctx, "orders", orderPayload, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if orderResp.Order == nil {
		return nil, fmt.Errorf("failed to create order: empty response")
	}
	orderID := orderResp.Order.ID

	productID, err := p.resolveProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("order %s created but product resolution failed: %w", orderID, err)
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	bookPayload := map[string]any{
		"ids": map[string]int{productID: quantity},
	}
	var bookResp struct {
		Order *orderWire `json:"order"`
	}
	if err := p.client.post(ctx, "orders/"+url.PathEscape(orderID)+"/book", bookPayload, &bookResp); err != nil {
		return nil, fmt.Errorf("order %s created but booking failed: %w", orderID, err)
	}
	if bookResp.Order == nil {
		return nil, fmt.Errorf("order %s created but booking failed: empty response", orderID)
	}

	return &domain.Reservation{
		OrderID:       bookResp.Order.ID,
		Status:        bookResp.Order.Status,
		GrandTotal:    bookResp.Order.GrandTotal,
		PaymentStatus: bookResp.Order.PaymentStatus,
	}, nil
}
