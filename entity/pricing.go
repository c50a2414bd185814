package entity

import "time"

// Price rule priorities and the confidence tiers they map to.
const (
	PriorityBrandModel = 10 // brand + model pattern -> high
	PriorityBrand      = 5  // brand only -> medium
	PriorityGeneric    = 0  // category only -> low
)

// Estimate confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
	ConfidenceNone   = "none"
)

// PriceRule is a tenant-defined price range scoped by optional
// brand/model filters. Empty filter fields match anything; a model
// pattern ending in % is a prefix match.
type PriceRule struct {
	ID     string `json:"id" bson:"_id"`
	ShopID string `json:"shop_id" bson:"shop_id"`

	RepairCategory     string `json:"repair_category,omitempty" bson:"repair_category,omitempty"`
	DeviceBrand        string `json:"device_brand,omitempty" bson:"device_brand,omitempty"`
	DeviceModelPattern string `json:"device_model_pattern,omitempty" bson:"device_model_pattern,omitempty"`

	PriceMin float64 `json:"price_min" bson:"price_min"`
	PriceMax float64 `json:"price_max" bson:"price_max"`

	Tier            string `json:"tier,omitempty" bson:"tier,omitempty"`
	TierDescription string `json:"tier_description,omitempty" bson:"tier_description,omitempty"`
	WarrantyMonths  int    `json:"warranty_months" bson:"warranty_months"`
	Notes           string `json:"notes,omitempty" bson:"notes,omitempty"`

	IsActive  bool      `json:"is_active" bson:"is_active"`
	Priority  int       `json:"priority" bson:"priority"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PriceTier is one surfaced price option (e.g. budget part vs original
// part). Ties at the same priority are all kept.
type PriceTier struct {
	Tier           string  `json:"tier"`
	Label          string  `json:"label"`
	PriceMin       float64 `json:"price_min"`
	PriceMax       float64 `json:"price_max"`
	WarrantyMonths int     `json:"warranty_months"`
	Description    string  `json:"description,omitempty"`
}

// PriceEstimate is the resolver output shown at the estimate step.
type PriceEstimate struct {
	Tiers      []PriceTier `json:"tiers,omitempty"`
	Confidence string      `json:"confidence"`
	Message    string      `json:"message,omitempty"`
}

// Range returns the min/max across all tiers. Ok is false when there
// are no tiers.
func (e PriceEstimate) Range() (min, max float64, ok bool) {
	if len(e.Tiers) == 0 {
		return 0, 0, false
	}
	min, max = e.Tiers[0].PriceMin, e.Tiers[0].PriceMax
	for _, t := range e.Tiers[1:] {
		if t.PriceMin < min {
			min = t.PriceMin
		}
		if t.PriceMax > max {
			max = t.PriceMax
		}
	}
	return min, max, true
}
