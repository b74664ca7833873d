package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
	"github.com/flatout-solutions/rental-assistant/internal/registry"
)

// Wire names of the assistant-facing operations. These are an external
// contract fixed at assistant-configuration time and must match exactly.
const (
	OpListEquipmentGroups = "list_equipment_groups"
	OpGetEquipmentDetails = "get_equipment_details"
	OpCheckAvailability   = "check_availability"
	OpGetPricing          = "get_pricing"
	OpCreateCustomer      = "create_customer"
	OpCreateReservation   = "create_reservation"
)

var (
	schemaListGroups = json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)

	schemaGetDetails = json.RawMessage(`{
		"type": "object",
		"properties": {
			"group_id": {"type": "string", "description": "ID of the equipment group (or product) to look up"},
			"from_date": {"type": "string", "description": "Start date of the rental period, YYYY-MM-DD"},
			"to_date": {"type": "string", "description": "End date of the rental period, YYYY-MM-DD"}
		},
		"required": ["group_id"]
	}`)

	schemaCheckAvailability = json.RawMessage(`{
		"type": "object",
		"properties": {
			"product_id": {"type": "string", "description": "ID of the product (or equipment group) to check"},
			"from_date": {"type": "string", "description": "Start date of the rental period, YYYY-MM-DD"},
			"to_date": {"type": "string", "description": "End date of the rental period, YYYY-MM-DD"}
		},
		"required": ["product_id", "from_date", "to_date"]
	}`)

	schemaGetPricing = json.RawMessage(`{
		"type": "object",
		"properties": {
			"product_id": {"type": "string", "description": "ID of the product (or equipment group) to price"}
		},
		"required": ["product_id"]
	}`)

	schemaCreateCustomer = json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Full name of the customer"},
			"email": {"type": "string", "description": "Email address of the customer"},
			"phone": {"type": "string", "description": "Phone number of the customer"},
			"address1": {"type": "string", "description": "Street address line 1"},
			"address2": {"type": "string", "description": "Street address line 2"},
			"city": {"type": "string", "description": "City"},
			"zipcode": {"type": "string", "description": "Postal/zip code"},
			"country": {"type": "string", "description": "Country"}
		},
		"required": ["name", "email", "phone"]
	}`)

	schemaCreateReservation = json.RawMessage(`{
		"type": "object",
		"properties": {
			"customer_id": {"type": "string", "description": "ID of an existing customer profile"},
			"customer_info": {
				"type": "object",
				"description": "Customer information, when no profile exists yet",
				"properties": {
					"name": {"type": "string"},
					"email": {"type": "string"},
					"phone": {"type": "string"},
					"address1": {"type": "string"},
					"address2": {"type": "string"},
					"city": {"type": "string"},
					"zipcode": {"type": "string"},
					"country": {"type": "string"}
				},
				"required": ["name", "email", "phone"]
			},
			"product_id": {"type": "string", "description": "ID of the product to book"},
			"start_date": {"type": "string", "description": "Start date of the rental period, YYYY-MM-DD"},
			"end_date": {"type": "string", "description": "End date of the rental period, YYYY-MM-DD"},
			"quantity": {"type": "integer", "minimum": 1, "description": "Number of units to book, defaults to 1"}
		},
		"required": ["product_id", "start_date", "end_date"]
	}`)
)

// RegisterOperations binds the six assistant-facing operations to the
// given provider. Failures inside handlers are normalized by the registry
// into {"error": ...} payloads.
func RegisterOperations(reg *registry.Registry, ops Operations) {
	reg.MustRegister(OpListEquipmentGroups,
		"Get a list of all available equipment groups/categories",
		schemaListGroups,
		func(ctx context.Context, _ json.RawMessage) (any, error) {
			return ops.ListEquipmentGroups(ctx)
		})

	reg.MustRegister(OpGetEquipmentDetails,
		"Get details about an equipment group, including availability and pricing when rental dates are provided",
		schemaGetDetails,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				GroupID  string `json:"group_id"`
				FromDate string `json:"from_date"`
				ToDate   string `json:"to_date"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
			}
			var window *domain.RentalWindow
			if in.FromDate != "" && in.ToDate != "" {
				w, err := domain.ParseRentalWindow(in.FromDate, in.ToDate)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
				}
				window = &w
			}
			return ops.GetEquipmentDetails(ctx, in.GroupID, window)
		})

	reg.MustRegister(OpCheckAvailability,
		"Check availability of a product for a specific rental period",
		schemaCheckAvailability,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				ProductID string `json:"product_id"`
				FromDate  string `json:"from_date"`
				ToDate    string `json:"to_date"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
			}
			window, err := domain.ParseRentalWindow(in.FromDate, in.ToDate)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
			}
			return ops.CheckAvailability(ctx, in.ProductID, window)
		})

	reg.MustRegister(OpGetPricing,
		"Get the pricing structure for a product",
		schemaGetPricing,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				ProductID string `json:"product_id"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
			}
			return ops.GetPricing(ctx, in.ProductID)
		})

	reg.MustRegister(OpCreateCustomer,
		"Create a new customer profile",
		schemaCreateCustomer,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			var info domain.CustomerInfo
			if err := json.Unmarshal(args, &info); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
			}
			return ops.CreateCustomer(ctx, info)
		})

	reg.MustRegister(OpCreateReservation,
		"Create a complete reservation for a product, including the order and booking",
		schemaCreateReservation,
		func(ctx context.Context, args json.RawMessage) (any, error) {
			var req domain.ReservationRequest
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
			}
			if req.Quantity <= 0 {
				req.Quantity = 1
			}
			return ops.CreateReservation(ctx, req)
		})
}
