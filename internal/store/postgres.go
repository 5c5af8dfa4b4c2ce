package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tablewave/reserve-server/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock's pool
// implements it, so tests can stand in for a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS shops (
	id             BIGSERIAL PRIMARY KEY,
	name           VARCHAR(100) NOT NULL,
	rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
	phone          VARCHAR(20) NOT NULL,
	address        VARCHAR(255) NOT NULL,
	image_url      VARCHAR(255),
	open_hours     VARCHAR(100),
	google_map_url VARCHAR(500) UNIQUE,
	user_id        BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_shops_user_id ON shops(user_id);
CREATE INDEX IF NOT EXISTS idx_shops_identity ON shops(name, address, user_id);

CREATE TABLE IF NOT EXISTS orders (
	id            BIGSERIAL PRIMARY KEY,
	customer_name VARCHAR(100) NOT NULL,
	party_size    INTEGER NOT NULL,
	phone         VARCHAR(20) NOT NULL,
	arrive_time   TIMESTAMPTZ NOT NULL,
	remark        TEXT,
	shop_id       BIGINT NOT NULL REFERENCES shops(id),
	status        TEXT NOT NULL DEFAULT 'created',
	user_id       BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// --- orders ---

const orderColumns = `id, customer_name, party_size, phone, arrive_time, remark, shop_id, status, user_id`

func (s *PostgresStore) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	if o.Status == "" {
		o.Status = model.OrderStatusCreated
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO orders (customer_name, party_size, phone, arrive_time, remark, shop_id, status, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		o.CustomerName, o.PartySize, o.Phone, o.ArriveTime, o.Remark, o.ShopID, string(o.Status), o.UserID,
	)
	if err := row.Scan(&o.ID); err != nil {
		return nil, wrapPgError(err, "postgres: insert order")
	}
	return &o, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (s *PostgresStore) ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list orders")
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, eris.Wrap(rows.Err(), "postgres: list orders iterate")
}

func (s *PostgresStore) UpdateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET customer_name = $1, party_size = $2, phone = $3, arrive_time = $4,
		 remark = $5, shop_id = $6, status = $7, user_id = $8 WHERE id = $9`,
		o.CustomerName, o.PartySize, o.Phone, o.ArriveTime, o.Remark, o.ShopID, string(o.Status), o.UserID, o.ID,
	)
	if err != nil {
		return nil, wrapPgError(err, "postgres: update order")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update order status %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- shops ---

const shopColumns = `id, name, rating, phone, address, image_url, open_hours, google_map_url, user_id`

func (s *PostgresStore) CreateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO shops (name, rating, phone, address, image_url, open_hours, google_map_url, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		sh.Name, sh.Rating, sh.Phone, sh.Address, sh.ImageURL, sh.OpenHours, sh.GoogleMapURL, sh.UserID,
	)
	if err := row.Scan(&sh.ID); err != nil {
		return nil, wrapPgError(err, "postgres: insert shop")
	}
	return &sh, nil
}

func (s *PostgresStore) GetShop(ctx context.Context, id int64) (*model.Shop, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE id = $1`, id)
	return scanShop(row)
}

func (s *PostgresStore) ListShops(ctx context.Context, limit, offset int) ([]model.Shop, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+shopColumns+` FROM shops ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list shops")
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, *sh)
	}
	return shops, eris.Wrap(rows.Err(), "postgres: list shops iterate")
}

func (s *PostgresStore) UpdateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE shops SET name = $1, rating = $2, phone = $3, address = $4,
		 image_url = $5, open_hours = $6, google_map_url = $7, user_id = $8 WHERE id = $9`,
		sh.Name, sh.Rating, sh.Phone, sh.Address, sh.ImageURL, sh.OpenHours, sh.GoogleMapURL, sh.UserID, sh.ID,
	)
	if err != nil {
		return nil, wrapPgError(err, "postgres: update shop")
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return &sh, nil
}

func (s *PostgresStore) DeleteShop(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete shop %d", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindShopByIdentity(ctx context.Context, name, address string, userID int64) (*model.Shop, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE name = $1 AND address = $2 AND user_id = $3 LIMIT 1`,
		name, address, userID,
	)
	sh, err := scanShop(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return sh, err
}

// --- helpers ---

// wrapPgError maps unique-violation errors to ErrConflict and ErrNoRows to
// ErrNotFound, wrapping everything else with context.
func wrapPgError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return eris.Wrap(ErrConflict, pgErr.ConstraintName)
	}
	return eris.Wrap(err, msg)
}

