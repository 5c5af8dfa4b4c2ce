package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tablewave/reserve-server/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Intended for local
// development; production runs on Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS shops (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	rating         REAL NOT NULL DEFAULT 0,
	phone          TEXT NOT NULL,
	address        TEXT NOT NULL,
	image_url      TEXT,
	open_hours     TEXT,
	google_map_url TEXT UNIQUE,
	user_id        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_shops_user_id ON shops(user_id);
CREATE INDEX IF NOT EXISTS idx_shops_identity ON shops(name, address, user_id);

CREATE TABLE IF NOT EXISTS orders (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_name TEXT NOT NULL,
	party_size    INTEGER NOT NULL,
	phone         TEXT NOT NULL,
	arrive_time   DATETIME NOT NULL,
	remark        TEXT,
	shop_id       INTEGER NOT NULL REFERENCES shops(id),
	status        TEXT NOT NULL DEFAULT 'created',
	user_id       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- orders ---

func (s *SQLiteStore) CreateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	if o.Status == "" {
		o.Status = model.OrderStatusCreated
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (customer_name, party_size, phone, arrive_time, remark, shop_id, status, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.CustomerName, o.PartySize, o.Phone, o.ArriveTime, o.Remark, o.ShopID, string(o.Status), o.UserID,
	)
	if err != nil {
		return nil, wrapSQLiteError(err, "sqlite: insert order")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	o.ID = id
	return &o, nil
}

func (s *SQLiteStore) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return scanOrder(row)
}

func (s *SQLiteStore) ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list orders")
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
	return orders, eris.Wrap(rows.Err(), "sqlite: list orders iterate")
}

func (s *SQLiteStore) UpdateOrder(ctx context.Context, o model.Order) (*model.Order, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET customer_name = ?, party_size = ?, phone = ?, arrive_time = ?,
		 remark = ?, shop_id = ?, status = ?, user_id = ? WHERE id = ?`,
		o.CustomerName, o.PartySize, o.Phone, o.ArriveTime, o.Remark, o.ShopID, string(o.Status), o.UserID, o.ID,
	)
	if err != nil {
		return nil, wrapSQLiteError(err, "sqlite: update order")
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *SQLiteStore) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update order status %d", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) DeleteOrder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete order %d", id)
	}
	return checkRowsAffected(res)
}

// --- shops ---

func (s *SQLiteStore) CreateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO shops (name, rating, phone, address, image_url, open_hours, google_map_url, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.Name, sh.Rating, sh.Phone, sh.Address, sh.ImageURL, sh.OpenHours, sh.GoogleMapURL, sh.UserID,
	)
	if err != nil {
		return nil, wrapSQLiteError(err, "sqlite: insert shop")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	sh.ID = id
	return &sh, nil
}

func (s *SQLiteStore) GetShop(ctx context.Context, id int64) (*model.Shop, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE id = ?`, id)
	return scanShop(row)
}

func (s *SQLiteStore) ListShops(ctx context.Context, limit, offset int) ([]model.Shop, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shopColumns+` FROM shops ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list shops")
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
	return shops, eris.Wrap(rows.Err(), "sqlite: list shops iterate")
}

func (s *SQLiteStore) UpdateShop(ctx context.Context, sh model.Shop) (*model.Shop, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE shops SET name = ?, rating = ?, phone = ?, address = ?,
		 image_url = ?, open_hours = ?, google_map_url = ?, user_id = ? WHERE id = ?`,
		sh.Name, sh.Rating, sh.Phone, sh.Address, sh.ImageURL, sh.OpenHours, sh.GoogleMapURL, sh.UserID, sh.ID,
	)
	if err != nil {
		return nil, wrapSQLiteError(err, "sqlite: update shop")
	}
	if err := checkRowsAffected(res); err != nil {
		return nil, err
	}
	return &sh, nil
}

func (s *SQLiteStore) DeleteShop(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shops WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete shop %d", id)
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) FindShopByIdentity(ctx context.Context, name, address string, userID int64) (*model.Shop, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shopColumns+` FROM shops WHERE name = ? AND address = ? AND user_id = ? LIMIT 1`,
		name, address, userID,
	)
	sh, err := scanShop(row)
	if err == nil {
		return sh, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

// --- helpers ---

// wrapSQLiteError maps unique-violation errors to ErrConflict. modernc's
// driver exposes constraint failures only through the message text.
func wrapSQLiteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return eris.Wrap(ErrConflict, msg)
	}
	return eris.Wrap(err, msg)
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
