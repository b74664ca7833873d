// Package provider defines the business-operations contract over the
// rental backend and shared plumbing for its implementations.
package provider

import (
	"context"
	"strings"

	"github.com/flatout-solutions/rental-assistant/internal/domain"
)

// Operations is the pluggable business-operations provider: the six named
// operations the assistant can request. Implementations are stateless and
// safe for concurrent use; every method returns either a result or an
// error, and the registry boundary normalizes errors to {"error": ...}
// payloads so nothing raises past dispatch.
type Operations interface {
	// ListEquipmentGroups returns the rentable equipment categories.
	ListEquipmentGroups(ctx context.Context) (*domain.GroupList, error)

	// GetEquipmentDetails returns group metadata and, when a rental window
	// is given, availability and a price quote for that window.
	// The id may refer to a group or to an individual product.
	GetEquipmentDetails(ctx context.Context, id string, window *domain.RentalWindow) (*domain.EquipmentDetails, error)

	// CheckAvailability checks stock for a product over a rental window.
	// The id may refer to a group or to an individual product.
	CheckAvailability(ctx context.Context, id string, window domain.RentalWindow) (*domain.Availability, error)

	// GetPricing returns the product's price structure. The id may refer
	// to a group or to an individual product.
	GetPricing(ctx context.Context, id string) (*domain.PricingInfo, error)

	// CreateCustomer creates a customer profile.
	CreateCustomer(ctx context.Context, info domain.CustomerInfo) (*domain.Customer, error)

	// CreateReservation places a reservation. Backends expose this either
	// as an order-then-book pair or as one atomic workflow call; callers
	// see a single contract.
	CreateReservation(ctx context.Context, req domain.ReservationRequest) (*domain.Reservation, error)
}

// phoneSeparators are stripped during phone normalization.
const phoneSeparators = "-. ()"

// NormalizePhone strips separator characters and, when the number lacks a
// leading international-dialing marker, prefixes the default country code.
func NormalizePhone(phone, defaultCountryCode string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(phoneSeparators, r) {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
	if cleaned == "" || strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	return defaultCountryCode + cleaned
}
