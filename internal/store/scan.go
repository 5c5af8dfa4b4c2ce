package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/tablewave/reserve-server/internal/model"
)

// scannable lets both pgx rows and database/sql rows share the scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func scanOrder(row scannable) (*model.Order, error) {
	var o model.Order
	var status string
	err := row.Scan(&o.ID, &o.CustomerName, &o.PartySize, &o.Phone, &o.ArriveTime,
		&o.Remark, &o.ShopID, &status, &o.UserID)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan order")
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}

func scanShop(row scannable) (*model.Shop, error) {
	var sh model.Shop
	err := row.Scan(&sh.ID, &sh.Name, &sh.Rating, &sh.Phone, &sh.Address,
		&sh.ImageURL, &sh.OpenHours, &sh.GoogleMapURL, &sh.UserID)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan shop")
	}
	return &sh, nil
}
