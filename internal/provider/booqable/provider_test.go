package booqable

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
	"github.com/flatout-solutions/rental-assistant/internal/provider"
)

// fakeBooqable simulates the remote REST API and records requests.
type fakeBooqable struct {
	t        *testing.T
	mux      *http.ServeMux
	requests []string
	bodies   map[string]json.RawMessage
}

func newFakeBooqable(t *testing.T) (*fakeBooqable, *Provider) {
	t.Helper()
	f := &fakeBooqable{t: t, mux: http.NewServeMux(), bodies: map[string]json.RawMessage{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
		if r.Body != nil {
			if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
				f.bodies[r.URL.Path] = body
			}
		}
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	rc := provider.NewRetryingClient(time.Second)
	rc.Sleep = func(time.Duration) {}
	return f, New(server.URL, "test-key", "+1", rc)
}

func (f *fakeBooqable) handle(pattern, response string) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	})
}

const excavatorGroup = `{
	"product_group": {
		"id": "g1",
		"name": "Excavators",
		"description": "Mini and midi excavators",
		"base_price": 250.0,
		"products": [
			{"id": "p1", "name": "Mini Excavator", "base_price": 250.0,
				"stock_counts": {"total": 3},
				"stock_items": [{"id": "si1", "identifier": "EX-001", "status": "in_stock"}]},
			{"id": "p2", "name": "Midi Excavator", "base_price": 400.0,
				"stock_counts": {"total": 1}, "stock_items": []}
		]
	}
}`

func TestListEquipmentGroups(t *testing.T) {
	f, p := newFakeBooqable(t)
	f.handle("/product_groups", `{
		"product_groups": [
			{"id": "g1", "name": "Excavators", "slug": "excavators", "base_price": 250.0, "stock_count": 4},
			{"id": "g2", "name": "Scaffolding", "slug": "scaffolding", "base_price": 35.5, "stock_count": 20}
		],
		"meta": {"total_count": 2}
	}`)

	list, err := p.ListEquipmentGroups(context.Background())
	if err != nil {
		t.Fatalf("ListEquipmentGroups failed: %v", err)
	}
	if list.TotalCount != 2 || len(list.Groups) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list.Groups[0].Name != "Excavators" || list.Groups[1].BasePrice != 35.5 {
		t.Fatalf("unexpected groups: %+v", list.Groups)
	}
}

func TestGetEquipmentDetailsWithQuote(t *testing.T) {
	f, p := newFakeBooqable(t)
	f.handle("/product_groups/g1", excavatorGroup)

	// Same-day rental charges a single day.
	window, err := domain.ParseRentalWindow("2026-09-01", "2026-09-01")
	if err != nil {
		t.Fatalf("ParseRentalWindow failed: %v", err)
	}
	details, err := p.GetEquipmentDetails(context.Background(), "g1", &window)
	if err != nil {
		t.Fatalf("GetEquipmentDetails failed: %v", err)
	}
	if len(details.Products) != 2 || details.Products[0].StockCount != 3 {
		t.Fatalf("unexpected products: %+v", details.Products)
	}
	if details.Quote == nil || details.Quote.RentalDays != 1 || details.Quote.TotalPrice != 250.0 {
		t.Fatalf("unexpected quote: %+v", details.Quote)
	}

	// Without a window there is no quote.
	details, err = p.GetEquipmentDetails(context.Background(), "g1", nil)
	if err != nil {
		t.Fatalf("GetEquipmentDetails failed: %v", err)
	}
	if details.Quote != nil {
		t.Fatalf("expected no quote, got %+v", details.Quote)
	}
}

func TestCheckAvailabilityWireDates(t *testing.T) {
	f, p := newFakeBooqable(t)
	f.handle("/product_groups/g1", excavatorGroup)
	f.handle("/products/p1/availability", `{"available": 2, "stock_count": 3, "needed": 1, "planned": 1}`)

	window, _ := domain.ParseRentalWindow("2026-09-01", "2026-09-05")
	avail, err := p.CheckAvailability(context.Background(), "g1", window)
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if avail.Available != 2 || avail.StockCount != 3 {
		t.Fatalf("unexpected availability: %+v", avail)
	}

	// The group id resolved to its first product, and the dates went out
	// in day-month-year order.
	var availReq string
	for _, r := range f.requests {
		if strings.Contains(r, "/availability") {
			availReq = r
		}
	}
	if !strings.Contains(availReq, "/products/p1/availability") {
		t.Fatalf("expected resolution to p1, got %q", availReq)
	}
	if !strings.Contains(availReq, "from=01-09-2026") || !strings.Contains(availReq, "till=05-09-2026") {
		t.Fatalf("unexpected wire dates: %q", availReq)
	}
}

func TestCheckAvailabilityProductIDPassThrough(t *testing.T) {
	f, p := newFakeBooqable(t)
	// The id is not a group; the probe 404s and the id passes through.
	f.mux.HandleFunc("/product_groups/p9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	f.handle("/products/p9/availability", `{"available": 0, "stock_count": 0, "needed": 1, "planned": 0}`)

	window, _ := domain.ParseRentalWindow("2026-09-01", "2026-09-02")
	avail, err := p.CheckAvailability(context.Background(), "p9", window)
	if err != nil {
		t.Fatalf("CheckAvailability failed: %v", err)
	}
	if avail.Available != 0 {
		t.Fatalf("unexpected availability: %+v", avail)
	}
}

func TestGroupProbeReportsAuthFailure(t *testing.T) {
	f, p := newFakeBooqable(t)
	// Only a 404 means "not a group"; an auth failure on the probe is a
	// real error and must not fall through to the product endpoints.
	f.mux.HandleFunc("/product_groups/p9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	window, _ := domain.ParseRentalWindow("2026-09-01", "2026-09-02")
	if _, err := p.CheckAvailability(context.Background(), "p9", window); err == nil {
		t.Fatal("expected an error from the unauthorized probe")
	}
	for _, r := range f.requests {
		if strings.Contains(r, "/products/") {
			t.Fatalf("unexpected product request after failed probe: %q", r)
		}
	}
}

func TestGetPricingConvertsCents(t *testing.T) {
	f, p := newFakeBooqable(t)
	f.handle("/product_groups/p1", `{}`)
	f.handle("/products/p1/prices", `{
		"price_structures": [
			{"tiles": [
				{"name": "1 day", "period": "day", "quantity": 1, "price_in_cents": 25000},
				{"name": "1 week", "period": "week", "quantity": 1, "price_in_cents": 120000}
			]}
		]
	}`)

	info, err := p.GetPricing(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetPricing failed: %v", err)
	}
	if len(info.Pricing) != 2 {
		t.Fatalf("unexpected pricing: %+v", info.Pricing)
	}
	if info.Pricing[0].Price != 250.0 || info.Pricing[1].Price != 1200.0 {
		t.Fatalf("unexpected price conversion: %+v", info.Pricing)
	}
}

func TestCreateCustomerNormalizesPhone(t *testing.T) {
	f, p := newFakeBooqable(t)
	f.handle("/customers", `{"customer": {"id": "c1", "name": "Ada Lovelace", "email": "ada@example.com"}}`)

	customer, err := p.CreateCustomer(context.Background(), domain.CustomerInfo{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Phone: "555-010-2030",
	})
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	if customer.CustomerID != "c1" {
		t.Fatalf("unexpected customer: %+v", customer)
	}
	if !strings.Contains(string(f.bodies["/customers"]), "+15550102030") {
		t.Fatalf("expected normalized phone in payload: %s", f.bodies["/customers"])
	}
}

func TestCreateReservationTwoStep(t *testing.T) {
	f, p := newFakeBooqable(t)
	f.handle("/product_groups/g1", excavatorGroup)
	f.handle("/orders", `{"order": {"id": "o1", "status": "concept"}}`)
	f.handle("/orders/o1/book", `{"order": {"id": "o1", "status": "reserved", "grand_total": 500.0, "payment_status": "payment_due"}}`)

	res, err := p.CreateReservation(context.Background(), domain.ReservationRequest{
		CustomerID: "c1",
		ProductID:  "g1",
		StartDate:  "2026-09-01",
		EndDate:    "2026-09-03",
		Quantity:   2,
	})
	if err != nil {
		t.Fatalf("CreateReservation failed: %v", err)
	}
	if res.OrderID != "o1" || res.Status != "reserved" {
		t.Fatalf("unexpected reservation: %+v", res)
	}
	if res.GrandTotal == nil || *res.GrandTotal != 500.0 {
		t.Fatalf("unexpected grand total: %+v", res.GrandTotal)
	}

	orderBody := string(f.bodies["/orders"])
	if !strings.Contains(orderBody, "01-09-2026 ") && !strings.Contains(orderBody, `"01-09-2026`) {
		t.Fatalf("expected wire datetime in order payload: %s", orderBody)
	}

	bookBody := string(f.bodies["/orders/o1/book"])
	if !strings.Contains(bookBody, `"p1":2`) {
		t.Fatalf("expected booked quantity for resolved product: %s", bookBody)
	}
}

func TestCreateReservationBookingFailureReportsOrder(t *testing.T) {
	f, p := newFakeBooqable(t)
	f.handle("/product_groups/p1", `{}`)
	f.handle("/orders", `{"order": {"id": "o7", "status": "concept"}}`)
	f.mux.HandleFunc("/orders/o7/book", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "stock exceeded"}`))
	})

	_, err := p.CreateReservation(context.Background(), domain.ReservationRequest{
		CustomerID: "c1",
		ProductID:  "p1",
		StartDate:  "2026-09-01",
		EndDate:    "2026-09-03",
	})
	if err == nil {
		t.Fatal("expected booking failure")
	}
	if !strings.Contains(err.Error(), "order o7 created but booking failed") {
		t.Fatalf("expected order id in error, got %v", err)
	}
}

func TestCreateReservationRequiresCustomer(t *testing.T) {
	_, p := newFakeBooqable(t)
	_, err := p.CreateReservation(context.Background(), domain.ReservationRequest{
		ProductID: "p1",
		StartDate: "2026-09-01",
		EndDate:   "2026-09-03",
	})
	if err == nil || !strings.Contains(err.Error(), "customer") {
		t.Fatalf("expected customer requirement error, got %v", err)
	}
}
