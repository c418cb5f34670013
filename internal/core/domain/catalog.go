package domain

import "time"

// MaxOfferCategories caps how many categories a single offer may belong to.
const MaxOfferCategories = 2

// City is a location offers can be scoped to. Names are unique.
type City struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Category groups offers by theme. Names are unique.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Offer is a promotional card shown to end clients. Titles are unique.
// Cities and Categories are the eagerly resolved many-to-many associations;
// their join rows live in dedicated link collections keyed by
// (offer_id, city_id) and (offer_id, category_id).
type Offer struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	BackgroundImageURL string     `json:"background_image_url"`
	CompanyLogoURL     string     `json:"company_logo_url"`
	CompanyName        string     `json:"company_name"`
	Cities             []City     `json:"cities"`
	Categories         []Category `json:"categories"`
	CreatedAt          time.Time  `json:"created_at"`
}

// RelayEvent is an opaque external message mirrored into the events endpoint.
// The service never interprets the payload.
type RelayEvent map[string]any
