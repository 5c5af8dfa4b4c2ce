package model

import "time"

// OrderStatus represents the outcome of a reservation order.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFail    OrderStatus = "fail"
)

// Order is a reservation request placed by a user for a shop.
type Order struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customer_name"`
	PartySize    int         `json:"party_size"`
	Phone        string      `json:"phone"`
	ArriveTime   time.Time   `json:"arrive_time"`
	Remark       *string     `json:"remark,omitempty"`
	ShopID       int64       `json:"shop_id"`
	Status       OrderStatus `json:"status"`
	UserID       int64       `json:"user_id"`
}

// Shop is a restaurant record, usually created from a Google Maps listing.
type Shop struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	ImageURL     *string `json:"image_url,omitempty"`
	OpenHours    *string `json:"open_hours,omitempty"`
	GoogleMapURL *string `json:"google_map_url,omitempty"`
	UserID       int64   `json:"user_id"`
}

// ShopCandidate is the sanitized output of the extraction pipeline, not yet
// persisted. Invariants: Rating is a finite non-negative float; Phone is
// never empty (sentinel "unspecified" when the listing omits it); OpenHours
// and ImageURL are nil rather than empty.
type ShopCandidate struct {
	Name      string  `json:"name"`
	Rating    float64 `json:"rating"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	ImageURL  *string `json:"image_url"`
	OpenHours *string `json:"open_hours"`
}

// PhoneUnspecified is stored when a listing carries no phone number.
const PhoneUnspecified = "unspecified"
