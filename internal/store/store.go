package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/tablewave/reserve-server/internal/model"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = eris.New("store: not found")

// ErrConflict is returned when a uniqueness constraint is violated, chiefly
// the global uniqueness of a shop's source map URL. Callers surface it as a
// distinct duplicate-entry failure.
var ErrConflict = eris.New("store: conflict")

// Store defines the persistence interface for orders and shops.
type Store interface {
	// Orders
	CreateOrder(ctx context.Context, o model.Order) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error)
	UpdateOrder(ctx context.Context, o model.Order) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error
	DeleteOrder(ctx context.Context, id int64) error

	// Shops
	CreateShop(ctx context.Context, s model.Shop) (*model.Shop, error)
	GetShop(ctx context.Context, id int64) (*model.Shop, error)
	ListShops(ctx context.Context, limit, offset int) ([]model.Shop, error)
	UpdateShop(ctx context.Context, s model.Shop) (*model.Shop, error)
	DeleteShop(ctx context.Context, id int64) error
	// FindShopByIdentity is the dedup-gate lookup: an existing shop with the
	// same (name, address, owner) short-circuits creation. Returns
	// (nil, nil) when no match exists.
	FindShopByIdentity(ctx context.Context, name, address string, userID int64) (*model.Shop, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// defaultListLimit caps unbounded list queries.
const defaultListLimit = 20
