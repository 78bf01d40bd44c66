package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"wooshop/internal/models"
	"wooshop/internal/repositories"
	"wooshop/pkg/audit"
	"wooshop/pkg/rabbitmq"
)

// OrderEventPublisher delivers order lifecycle events to other services.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev rabbitmq.OrderEvent) error
}

// AuditTrail stores and lists order audit entries.
type AuditTrail interface {
	Record(ctx context.Context, e audit.Entry) error
	List(ctx context.Context, orderID string, limit int64) ([]audit.Entry, error)
}

type LineItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type ShippingLineInput struct {
	MethodID    string          `json:"method_id" validate:"required"`
	MethodTitle string          `json:"method_title"`
	Total       decimal.Decimal `json:"total"`
}

// CreateOrderInput is a checkout request.
type CreateOrderInput struct {
	PaymentMethod      string              `json:"payment_method" validate:"required"`
	PaymentMethodTitle string              `json:"payment_method_title"`
	SetPaid            bool                `json:"set_paid"`
	Billing            *models.Address     `json:"billing"`
	Shipping           *models.Address     `json:"shipping"`
	LineItems          []LineItemInput     `json:"line_items" validate:"required,min=1,dive"`
	ShippingLines      []ShippingLineInput `json:"shipping_lines" validate:"dive"`
	CustomerNote       string              `json:"customer_note"`
}

// UpdateOrderInput carries the admin-editable order fields.
type UpdateOrderInput struct {
	Status        *models.OrderStatus `json:"status"`
	StatusNote    string              `json:"status_note"`
	Billing       *models.Address     `json:"billing"`
	Shipping      *models.Address     `json:"shipping"`
	CustomerNote  *string             `json:"customer_note"`
	TransactionID *string             `json:"transaction_id"`
}

// OrderService turns checkouts into orders and manages their lifecycle.
//
// Without a unit of work, orders are placed item by item: each product is
// checked and its counters written back before the next one is read, so a
// failure leaves the earlier items' stock changes applied and concurrent
// buyers can oversell. With a unit of work the whole placement runs in one
// transaction and stock is taken with a conditional decrement.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	carts    repositories.CartRepository
	uow      repositories.UnitOfWork
	events   OrderEventPublisher
	audit    AuditTrail
	currency string
	log      *zap.Logger
	now      func() time.Time
}

// NewOrderService creates a new OrderService in per-item mode.
func NewOrderService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	carts repositories.CartRepository,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		orders:   orders,
		products: products,
		users:    users,
		carts:    carts,
		currency: "USD",
		log:      log,
		now:      time.Now,
	}
}

// WithUnitOfWork switches order placement to transactional mode.
func (s *OrderService) WithUnitOfWork(uow repositories.UnitOfWork) *OrderService {
	s.uow = uow
	return s
}

func (s *OrderService) WithEvents(p OrderEventPublisher) *OrderService {
	s.events = p
	return s
}

func (s *OrderService) WithAudit(a AuditTrail) *OrderService {
	s.audit = a
	return s
}

func (s *OrderService) WithCurrency(currency string) *OrderService {
	if currency != "" {
		s.currency = currency
	}
	return s
}

func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// Transactional reports whether orders are placed in a unit of work.
func (s *OrderService) Transactional() bool {
	return s.uow != nil
}

// CreateOrder places an order for customerID and clears their cart.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, in CreateOrderInput) (*models.Order, error) {
	if err := ValidateCheckout(in); err != nil {
		return nil, err
	}

	var (
		order *models.Order
		err   error
	)
	if s.uow != nil {
		err = s.uow.Do(ctx, func(tx repositories.Tx) error {
			order, err = s.place(ctx, tx.Products, tx.Orders, tx.Users, customerID, in, tx.Products.ReserveStock)
			return err
		})
	} else {
		order, err = s.place(ctx, s.products, s.orders, s.users, customerID, in, s.products.RecordSale)
	}
	if err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, customerID); err != nil {
		s.log.Warn("Clear cart after order", zap.String("customer_id", customerID), zap.Error(err))
	}
	s.publish(ctx, rabbitmq.EventOrderCreated, order, "")
	s.record(ctx, order.ID, audit.ActionCreated, customerID, map[string]string{
		"order_key": order.OrderKey,
		"total":     order.Totals.Total.StringFixed(2),
	})
	s.log.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customerID),
		zap.String("total", order.Totals.Total.StringFixed(2)),
		zap.Bool("transactional", s.uow != nil),
	)
	return order, nil
}

// place runs the placement steps against the given repositories. take
// adjusts one product's stock and sales counters.
func (s *OrderService) place(
	ctx context.Context,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	users repositories.UserRepository,
	customerID string,
	in CreateOrderInput,
	take func(ctx context.Context, productID string, qty int) error,
) (*models.Order, error) {
	now := s.now()
	order := &models.Order{
		OrderKey:           models.NewOrderKey(now),
		CustomerID:         customerID,
		Status:             models.OrderPending,
		Currency:           s.currency,
		PaymentMethod:      in.PaymentMethod,
		PaymentMethodTitle: in.PaymentMethodTitle,
		SetPaid:            in.SetPaid,
		Billing:            *in.Billing,
		Shipping:           *in.Shipping,
		LineItems:          make([]models.OrderItem, 0, len(in.LineItems)),
		ShippingLines:      make([]models.ShippingLine, 0, len(in.ShippingLines)),
		CouponLines:        []models.CouponLine{},
		CustomerNote:       in.CustomerNote,
		CreatedAt:          now,
	}

	for _, li := range in.LineItems {
		p, err := products.GetByID(ctx, li.ProductID)
		if err != nil {
			return nil, notFound(err, ErrProductNotFound.Withf("Product with ID %s not found", li.ProductID), "get product")
		}
		if !p.Available() {
			return nil, ErrProductUnavailable.Withf("Product %s is not available", p.Name)
		}
		if p.ManageStock && p.StockQuantity < li.Quantity {
			return nil, ErrInsufficientStock.Withf("Insufficient stock for %s", p.Name)
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
		order.LineItems = append(order.LineItems, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Quantity:  li.Quantity,
			Price:     p.Price,
			Subtotal:  subtotal,
			Total:     subtotal,
		})

		if err := take(ctx, p.ID, li.Quantity); err != nil {
			if errors.Is(err, repositories.ErrStockConflict) {
				return nil, ErrInsufficientStock.Withf("Insufficient stock for %s", p.Name)
			}
			return nil, notFound(err, ErrProductNotFound.Withf("Product with ID %s not found", p.ID), "update product stock")
		}
	}

	for _, sl := range in.ShippingLines {
		order.ShippingLines = append(order.ShippingLines, models.ShippingLine{
			MethodID:    sl.MethodID,
			MethodTitle: sl.MethodTitle,
			Total:       sl.Total,
		})
	}
	order.CalculateTotals()

	if in.SetPaid {
		order.DatePaid = &now
		order.AddNote("Order paid via "+paymentTitle(in), "system", false, now)
	}

	if err := orders.Create(ctx, order); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	if err := users.RecordOrder(ctx, customerID, order.Totals.Total); err != nil {
		return nil, notFound(err, ErrCustomerNotFound, "record customer order")
	}
	return order, nil
}

func paymentTitle(in CreateOrderInput) string {
	if in.PaymentMethodTitle != "" {
		return in.PaymentMethodTitle
	}
	return in.PaymentMethod
}

var (
	billingRequired = []struct {
		name string
		get  func(models.Address) string
	}{
		{"first_name", func(a models.Address) string { return a.FirstName }},
		{"last_name", func(a models.Address) string { return a.LastName }},
		{"address_1", func(a models.Address) string { return a.Address1 }},
		{"city", func(a models.Address) string { return a.City }},
		{"state", func(a models.Address) string { return a.State }},
		{"postcode", func(a models.Address) string { return a.Postcode }},
		{"country", func(a models.Address) string { return a.Country }},
		{"email", func(a models.Address) string { return a.Email }},
		{"phone", func(a models.Address) string { return a.Phone }},
	}
	// Shipping requires the billing fields without contact details.
	shippingRequired = billingRequired[:7]
)

// ValidateCheckout reports the first missing checkout field with
// missing_required_fields, then rejects malformed lines.
func ValidateCheckout(in CreateOrderInput) error {
	if in.PaymentMethod == "" || in.Billing == nil || in.Shipping == nil || len(in.LineItems) == 0 {
		return ErrMissingFields
	}
	for _, f := range billingRequired {
		if f.get(*in.Billing) == "" {
			return ErrMissingFields.Withf("Missing required billing field: %s", f.name)
		}
	}
	for _, f := range shippingRequired {
		if f.get(*in.Shipping) == "" {
			return ErrMissingFields.Withf("Missing required shipping field: %s", f.name)
		}
	}
	for _, li := range in.LineItems {
		if li.ProductID == "" || li.Quantity < 1 {
			return ErrValidation.Withf("Each line item needs a product_id and a quantity of at least 1")
		}
	}
	for _, sl := range in.ShippingLines {
		if sl.Total.IsNegative() {
			return ErrValidation.Withf("Shipping line %s has a negative total", sl.MethodID)
		}
	}
	return nil
}

// GetOrder returns an order the actor may see.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "get order")
	}
	if !actor.CanAccess(order.CustomerID) {
		return nil, ErrForbidden.Withf("Not authorized to access this order")
	}
	return order, nil
}

// ListOrders lists orders. Customers only ever see their own.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, f repositories.OrderFilter) ([]models.Order, int64, error) {
	if !actor.Admin {
		f.CustomerID = actor.UserID
	}
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	return orders, total, nil
}

// UpdateOrder applies admin changes. A status change is recorded as a note
// and published; setting the current status again records nothing.
func (s *OrderService) UpdateOrder(ctx context.Context, actor Actor, id string, in UpdateOrderInput) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "get order")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus.Withf("Invalid order status %q", *in.Status)
	}

	previous := order.Status
	var (
		note    models.OrderNote
		changed bool
	)
	if in.Status != nil {
		note, changed = order.TransitionTo(*in.Status, in.StatusNote, s.now())
	}
	set(&order.Billing, in.Billing)
	set(&order.Shipping, in.Shipping)
	set(&order.CustomerNote, in.CustomerNote)
	set(&order.TransactionID, in.TransactionID)

	write := func(orders repositories.OrderRepository) error {
		if err := orders.Update(ctx, order); err != nil {
			return notFound(err, ErrOrderNotFound, "update order")
		}
		if changed {
			if err := orders.AddNote(ctx, &note); err != nil {
				return errors.Wrap(err, "add status note")
			}
		}
		return nil
	}
	if s.uow != nil {
		err = s.uow.Do(ctx, func(tx repositories.Tx) error { return write(tx.Orders) })
	} else {
		err = write(s.orders)
	}
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, rabbitmq.EventOrderStatusChanged, order, previous)
		s.record(ctx, order.ID, audit.ActionStatusChanged, actor.UserID, map[string]string{
			"from": string(previous),
			"to":   string(order.Status),
		})
	}
	return order, nil
}

// AddNote appends a free-text note to an order.
func (s *OrderService) AddNote(ctx context.Context, actor Actor, id, text string, customerNote bool) (*models.OrderNote, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "get order")
	}
	addedBy := "system"
	if actor.UserID != "" {
		addedBy = actor.UserID
	}
	note := order.AddNote(text, addedBy, customerNote, s.now())
	if err := s.orders.AddNote(ctx, &note); err != nil {
		return nil, notFound(err, ErrOrderNotFound, "add order note")
	}
	s.record(ctx, order.ID, audit.ActionNoteAdded, actor.UserID, map[string]string{"note": text})
	return &note, nil
}

// DeleteOrder removes an order for admin cleanup.
func (s *OrderService) DeleteOrder(ctx context.Context, actor Actor, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound, "get order")
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return nil, notFound(err, ErrOrderNotFound, "delete order")
	}
	s.record(ctx, id, audit.ActionDeleted, actor.UserID, nil)
	return order, nil
}

// AuditTrail returns the recorded lifecycle of an order, or nothing when
// auditing is disabled.
func (s *OrderService) AuditTrail(ctx context.Context, id string, limit int64) ([]audit.Entry, error) {
	if _, err := s.orders.GetByID(ctx, id); err != nil {
		return nil, notFound(err, ErrOrderNotFound, "get order")
	}
	if s.audit == nil {
		return []audit.Entry{}, nil
	}
	entries, err := s.audit.List(ctx, id, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list audit entries")
	}
	return entries, nil
}

func (s *OrderService) publish(ctx context.Context, typ string, order *models.Order, previous models.OrderStatus) {
	if s.events == nil {
		return
	}
	ev := rabbitmq.OrderEvent{
		Type:           typ,
		OrderID:        order.ID,
		OrderKey:       order.OrderKey,
		CustomerID:     order.CustomerID,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		Total:          order.Totals.Total.StringFixed(2),
		Currency:       order.Currency,
		OccurredAt:     s.now(),
	}
	if err := s.events.PublishOrderEvent(ctx, ev); err != nil {
		s.log.Warn("Publish order event", zap.String("type", typ), zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (s *OrderService) record(ctx context.Context, orderID, action, actor string, data map[string]string) {
	if s.audit == nil {
		return
	}
	e := audit.Entry{OrderID: orderID, Action: action, Actor: actor, Data: data, CreatedAt: s.now()}
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Warn("Record order audit entry", zap.String("order_id", orderID), zap.String("action", action), zap.Error(err))
	}
}
