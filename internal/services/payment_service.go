package services

type PaymentMethod struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Enabled      bool     `json:"enabled"`
	Icon         string   `json:"icon"`
	Instructions string   `json:"instructions,omitempty"`
	Supported    []string `json:"supported,omitempty"`
}

// PaymentService lists the payment gateways offered at checkout. No
// gateway is contacted.
type PaymentService struct {
	methods []PaymentMethod
}

func NewPaymentService() *PaymentService {
	return &PaymentService{methods: []PaymentMethod{
		{ID: "cod", Title: "Cash on Delivery", Description: "Pay with cash when your order is delivered", Enabled: true, Icon: "cash"},
		{
			ID:           "bacs",
			Title:        "Direct Bank Transfer",
			Description:  "Make payment directly into our bank account",
			Enabled:      true,
			Icon:         "bank",
			Instructions: "Please use your Order ID as the payment reference.",
		},
		{
			ID:          "card",
			Title:       "Credit/Debit Card",
			Description: "Pay securely with your credit or debit card",
			Enabled:     true,
			Icon:        "credit-card",
			Supported:   []string{"visa", "mastercard", "amex"},
		},
		{ID: "paypal", Title: "PayPal", Description: "Pay via PayPal", Enabled: true, Icon: "paypal"},
		{
			ID:          "stripe",
			Title:       "Stripe",
			Description: "Pay securely using Stripe payment gateway",
			Enabled:     true,
			Icon:        "stripe",
			Supported:   []string{"visa", "mastercard", "amex", "discover"},
		},
		{
			ID:          "wallet",
			Title:       "Digital Wallet",
			Description: "Pay using Apple Pay, Google Pay, or other digital wallets",
			Enabled:     true,
			Icon:        "wallet",
			Supported:   []string{"apple_pay", "google_pay"},
		},
	}}
}

func (s *PaymentService) Methods() []PaymentMethod {
	out := make([]PaymentMethod, 0, len(s.methods))
	for _, m := range s.methods {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out
}

func (s *PaymentService) Method(id string) (*PaymentMethod, error) {
	for _, m := range s.methods {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, ErrPaymentMethodNotFound
}
