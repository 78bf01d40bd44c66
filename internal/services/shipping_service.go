package services

import (
	"github.com/shopspring/decimal"
)

type ShippingMethod struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Cost           decimal.Decimal  `json:"cost"`
	Description    string           `json:"description"`
	Enabled        bool             `json:"enabled"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
	EstimatedDays  int              `json:"estimated_days"`
	// PerItem is added to Cost for every item in the shipment.
	PerItem decimal.Decimal `json:"-"`
}

type ShippingZone struct {
	ID      int              `json:"id"`
	Name    string           `json:"name"`
	Regions []string         `json:"regions"`
	Methods []ShippingMethod `json:"methods"`
}

type ShippingQuote struct {
	MethodID      string          `json:"method_id"`
	Method        string          `json:"method"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimated_days"`
}

// ShippingService serves a fixed table of shipping methods.
type ShippingService struct {
	methods []ShippingMethod
}

func NewShippingService() *ShippingService {
	freeFrom := decimal.NewFromInt(100)
	return &ShippingService{methods: []ShippingMethod{
		{
			ID:            "flat_rate",
			Title:         "Flat Rate",
			Cost:          decimal.NewFromInt(10),
			Description:   "Standard shipping - 5-7 business days",
			Enabled:       true,
			EstimatedDays: 6,
		},
		{
			ID:             "free_shipping",
			Title:          "Free Shipping",
			Cost:           decimal.Zero,
			Description:    "Free standard shipping - 7-10 business days",
			Enabled:        true,
			MinOrderAmount: &freeFrom,
			EstimatedDays:  9,
		},
		{
			ID:            "express",
			Title:         "Express Shipping",
			Cost:          decimal.NewFromInt(25),
			Description:   "Express delivery - 2-3 business days",
			Enabled:       true,
			EstimatedDays: 3,
			PerItem:       decimal.NewFromInt(1),
		},
		{
			ID:            "overnight",
			Title:         "Overnight Shipping",
			Cost:          decimal.NewFromInt(50),
			Description:   "Next business day delivery",
			Enabled:       true,
			EstimatedDays: 1,
			PerItem:       decimal.NewFromInt(1),
		},
	}}
}

// Methods returns the enabled methods. With a cart total, methods whose
// minimum order amount is not met are left out.
func (s *ShippingService) Methods(cartTotal *decimal.Decimal) []ShippingMethod {
	out := make([]ShippingMethod, 0, len(s.methods))
	for _, m := range s.methods {
		if !m.Enabled {
			continue
		}
		if cartTotal != nil && m.MinOrderAmount != nil && cartTotal.LessThan(*m.MinOrderAmount) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *ShippingService) Method(id string) (*ShippingMethod, error) {
	for _, m := range s.methods {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, ErrShippingMethodNotFound
}

// Calculate quotes a shipment of itemCount items.
func (s *ShippingService) Calculate(methodID string, itemCount int) (*ShippingQuote, error) {
	m, err := s.Method(methodID)
	if err != nil {
		return nil, err
	}
	cost := m.Cost.Add(m.PerItem.Mul(decimal.NewFromInt(int64(itemCount))))
	return &ShippingQuote{MethodID: m.ID, Method: m.Title, Cost: cost, EstimatedDays: m.EstimatedDays}, nil
}

// Zones lists the shipping zones. Overnight delivery is domestic only.
func (s *ShippingService) Zones() []ShippingZone {
	all := s.Methods(nil)
	intl := make([]ShippingMethod, 0, len(all))
	for _, m := range all {
		if m.ID != "overnight" {
			intl = append(intl, m)
		}
	}
	return []ShippingZone{
		{ID: 1, Name: "United States", Regions: []string{"US"}, Methods: all},
		{ID: 2, Name: "International", Regions: []string{"*"}, Methods: intl},
	}
}
