package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalog "go-market/internal/catalog/domain"
	"go-market/internal/orders/domain"
	"go-market/internal/orders/ports"
	"go-market/pkg/errors"
	"go-market/pkg/logger"
	"go-market/pkg/metrics"
)

// Config tunes the order use case
type Config struct {
	TransactionFeeRate decimal.Decimal
	Transitions        *metrics.TransitionCounter
}

// OrderUseCase handles order business logic
type OrderUseCase struct {
	store     ports.Store
	profiles  ports.ProfileDirectory
	payments  ports.PaymentGateway
	publisher ports.EventPublisher
	cfg       Config
	log       *logger.Logger
}

// NewOrderUseCase creates a new order use case. profiles, payments and publisher may be nil.
func NewOrderUseCase(
	store ports.Store,
	profiles ports.ProfileDirectory,
	payments ports.PaymentGateway,
	publisher ports.EventPublisher,
	cfg Config,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		store:     store,
		profiles:  profiles,
		payments:  payments,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

// CreateOrderInput represents the input for creating an order
type CreateOrderInput struct {
	BuyerProfileID   uuid.UUID
	Items            []domain.RequestedItem
	PaymentOption    string
	ShippingLabel    string
	HomeDelivery     bool
	DeliveryEventID  *uuid.UUID
	PickupLocationID *uuid.UUID
}

func (in CreateOrderInput) validate() error {
	if in.BuyerProfileID == uuid.Nil {
		return domain.ErrBuyerRequired
	}
	if len(in.Items) == 0 {
		return domain.ErrEmptyOrder
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}
	if in.PaymentOption == "" {
		return domain.ErrPaymentOptionRequired
	}
	return nil
}

// CreateOrderOutput represents the output of creating an order
type CreateOrderOutput struct {
	Order *domain.Order
}

// CreateOrder validates the request, snapshots the items, reserves stock and stores the order in one transaction
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderOutput, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	ids, quantities := domain.PrepItems(input.Items)

	items, err := uc.store.Items().FetchActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := domain.ItemsFound(ids, items); err != nil {
		return nil, err
	}
	items = inRequestOrder(ids, items)

	lines, err := uc.resolveLines(ctx, items, quantities)
	if err != nil {
		return nil, err
	}
	if err := checkLines(lines, input); err != nil {
		return nil, err
	}

	seller := lines[0].Item.OwnerProfileID
	if err := uc.checkDeliveryTargets(ctx, seller, input); err != nil {
		return nil, err
	}
	if err := uc.checkSeller(ctx, seller); err != nil {
		return nil, err
	}

	order, err := uc.buildOrder(input, lines, items, quantities)
	if err != nil {
		return nil, err
	}

	keys := []domain.EventKey{domain.EventOrderCreate}
	if order.Status == domain.StatusAccepted {
		keys = append(keys, domain.EventOrderAccept)
	}
	events := domain.NewEvents(order, keys...)

	err = uc.store.WithinTx(ctx, func(tx ports.Store) error {
		if err := reserveStock(ctx, tx, lines); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		return tx.Outbox().Append(ctx, events...)
	})
	if err != nil {
		return nil, err
	}

	uc.dispatch(ctx, events)

	uc.log.WithContext(ctx).Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_profile_id", order.BuyerProfileID.String()),
		zap.String("seller_profile_id", order.SellerProfileID.String()),
		zap.String("status", string(order.Status)),
		zap.String("total_price", order.TotalPrice.String()),
	)

	return &CreateOrderOutput{Order: order}, nil
}

// inRequestOrder sorts fetched items like the requested ids
func inRequestOrder(ids []uuid.UUID, items []*catalog.Item) []*catalog.Item {
	byID := make(map[uuid.UUID]*catalog.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	out := make([]*catalog.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out
}

// resolveLines attaches each item's own options or its seller's defaults
func (uc *OrderUseCase) resolveLines(ctx context.Context, items []*catalog.Item, quantities map[uuid.UUID]int) ([]domain.Line, error) {
	defaults := make(map[uuid.UUID]*catalog.ItemOptions)
	lines := make([]domain.Line, 0, len(items))

	for _, item := range items {
		opts := item.Options
		if opts == nil {
			d, seen := defaults[item.OwnerProfileID]
			if !seen {
				var err error
				d, err = uc.store.Options().Get(ctx, item.OwnerProfileID)
				if err != nil {
					return nil, err
				}
				defaults[item.OwnerProfileID] = d
			}
			opts = d
		}
		lines = append(lines, domain.Line{Item: item, Options: opts, Quantity: quantities[item.ID]})
	}
	return lines, nil
}

func checkLines(lines []domain.Line, input CreateOrderInput) error {
	checks := []error{
		domain.OneOwner(lines),
		domain.BuyerNotOwner(lines, input.BuyerProfileID),
		domain.ItemsInStock(lines),
		domain.PaymentSupported(lines, input.PaymentOption),
		domain.OneCurrency(lines),
	}
	if input.ShippingLabel != "" {
		checks = append(checks, domain.ShippingSupported(lines, input.ShippingLabel))
	}
	if input.HomeDelivery {
		checks = append(checks, domain.HomeDeliverySupported(lines))
	}

	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

func (uc *OrderUseCase) checkDeliveryTargets(ctx context.Context, seller uuid.UUID, input CreateOrderInput) error {
	if input.DeliveryEventID != nil {
		event, err := uc.store.Delivery().GetEvent(ctx, *input.DeliveryEventID)
		if err != nil {
			return err
		}
		if event.OwnerProfileID != seller {
			return domain.ErrDeliveryTargetMismatch
		}
	}
	if input.PickupLocationID != nil {
		location, err := uc.store.Delivery().GetLocation(ctx, *input.PickupLocationID)
		if err != nil {
			return err
		}
		if location.OwnerProfileID != seller {
			return domain.ErrDeliveryTargetMismatch
		}
	}
	return nil
}

func (uc *OrderUseCase) checkSeller(ctx context.Context, seller uuid.UUID) error {
	if uc.profiles == nil {
		return nil
	}
	if _, err := uc.profiles.GetProfile(ctx, seller); err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return domain.ErrSellerNotResolvable
		}
		return errors.Wrap(err, "failed to resolve seller")
	}
	return nil
}

func (uc *OrderUseCase) buildOrder(input CreateOrderInput, lines []domain.Line, items []*catalog.Item, quantities map[uuid.UUID]int) (*domain.Order, error) {
	itemsTotal, err := domain.CalcItemsPriceTotal(items, quantities)
	if err != nil {
		return nil, err
	}

	first := lines[0].Options
	shipping := domain.CalcOrderShippingCost(first, input.ShippingLabel)
	homeDelivery := domain.CalcHomeDeliveryPrice(first, input.HomeDelivery)
	price := domain.CalcOrderPriceTotal(itemsTotal, shipping, homeDelivery, uc.cfg.TransactionFeeRate)

	options := make([]*catalog.ItemOptions, 0, len(lines))
	snapshot := make([]domain.LineItem, 0, len(lines))
	for _, l := range lines {
		options = append(options, l.Options)

		item := *l.Item
		item.Options = l.Options
		unit := domain.CalcBracketPrice(l.Item, l.Quantity)
		snapshot = append(snapshot, domain.LineItem{
			Item:      item,
			Quantity:  l.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}

	order := &domain.Order{
		ID:                    uuid.New(),
		BuyerProfileID:        input.BuyerProfileID,
		SellerProfileID:       lines[0].Item.OwnerProfileID,
		Items:                 snapshot,
		ItemsPriceTotal:       itemsTotal,
		ShippingPrice:         shipping,
		HomeDeliveryPrice:     homeDelivery,
		TransactionFee:        price.TransactionFee,
		TotalPrice:            price.Total,
		BaseCurrency:          first.Currency(),
		ShippingSelected:      input.ShippingLabel,
		HomeDelivery:          input.HomeDelivery,
		PaymentOptionSelected: input.PaymentOption,
		State:                 domain.InitialState(domain.DetermineStatus(options...) == domain.StatusPending),
		DeliveryEventID:       input.DeliveryEventID,
		PickupLocationID:      input.PickupLocationID,
	}
	if order.Status == domain.StatusAccepted {
		order.PaymentDetails = order.DefaultPaymentDetails()
	}
	return order, nil
}

func reserveStock(ctx context.Context, tx ports.Store, lines []domain.Line) error {
	for _, l := range lines {
		if _, err := tx.Items().AdjustStock(ctx, l.Item.ID, -l.Quantity, l.Quantity); err != nil {
			if errors.Is(err, errors.CodeConflict) {
				return domain.NewInsufficientStock(l.Item.ID, l.Quantity, l.Item.InStock)
			}
			return err
		}
	}
	return nil
}

func releaseStock(ctx context.Context, tx ports.Store, order *domain.Order) error {
	for _, l := range order.Items {
		if _, err := tx.Items().AdjustStock(ctx, l.Item.ID, l.Quantity, -l.Quantity); err != nil {
			return errors.Wrap(err, "failed to release stock")
		}
	}
	return nil
}

// dispatch counts committed events and publishes them. Events that fail to publish stay
// in the outbox for the relay.
func (uc *OrderUseCase) dispatch(ctx context.Context, events []domain.Event) {
	for _, e := range events {
		uc.cfg.Transitions.Inc(string(e.EventKey))
	}
	if uc.publisher == nil {
		return
	}

	sent := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		if err := uc.publisher.Publish(ctx, e); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order event",
				zap.Error(err),
				zap.String("order_id", e.DataObjectID.String()),
				zap.String("event_key", string(e.EventKey)),
			)
			continue
		}
		sent = append(sent, e.ID)
	}

	if len(sent) == 0 {
		return
	}
	if err := uc.store.Outbox().MarkSent(ctx, sent...); err != nil {
		uc.log.WithContext(ctx).Warn("failed to mark order events sent", zap.Error(err))
	}
}

// GetOrderInput represents the input for getting an order
type GetOrderInput struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
}

// GetOrderOutput represents the output of getting an order
type GetOrderOutput struct {
	Order *domain.Order
}

// GetOrder retrieves an order visible to the buyer or the seller
func (uc *OrderUseCase) GetOrder(ctx context.Context, input GetOrderInput) (*GetOrderOutput, error) {
	order, err := uc.store.Orders().GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := domain.CanAccess(order, input.ProfileID); err != nil {
		return nil, err
	}

	return &GetOrderOutput{Order: order}, nil
}

// ListOrdersInput represents the input for listing orders
type ListOrdersInput struct {
	ProfileID uuid.UUID
	Role      ports.Role
	Status    domain.Status
	Limit     int
	Offset    int
	Ascending bool
}

// ListOrdersOutput is one page of orders
type ListOrdersOutput struct {
	Orders []*domain.Order
	Total  int64
	Limit  int
	Offset int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListOrders lists the orders the profile takes part in
func (uc *OrderUseCase) ListOrders(ctx context.Context, input ListOrdersInput) (*ListOrdersOutput, error) {
	switch input.Role {
	case "":
		input.Role = ports.RoleAny
	case ports.RoleAny, ports.RoleBuyer, ports.RoleSeller:
	default:
		return nil, errors.NewValidation("role must be one of any, buyer, seller", nil)
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, errors.NewValidation("unknown order status", map[string]string{"status": string(input.Status)})
	}
	if input.Limit <= 0 || input.Limit > maxPageSize {
		input.Limit = defaultPageSize
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	orders, total, err := uc.store.Orders().List(ctx, ports.ListFilter{
		ProfileID: input.ProfileID,
		Role:      input.Role,
		Status:    input.Status,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Ascending: input.Ascending,
	})
	if err != nil {
		return nil, err
	}

	return &ListOrdersOutput{Orders: orders, Total: total, Limit: input.Limit, Offset: input.Offset}, nil
}
