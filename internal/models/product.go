package models

import "github.com/shopspring/decimal"

func init() {
	// Prices are emitted as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Stored prices are numeric(12,2).
const (
	priceIntegerDigits = 10
	priceMinExponent   = -10
)

// MaxPrice is the largest price the catalog can store.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// PriceWithinBounds reports whether |d| fits the stored price column. The
// exponent is checked before any arithmetic so that inputs like 1e50000000
// are rejected without rescaling.
func PriceWithinBounds(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < priceMinExponent || d.NumDigits()+exp > priceIntegerDigits {
		return false
	}
	return d.Abs().LessThanOrEqual(MaxPrice)
}

// Gender is the audience a product is merchandised for.
type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderKids   Gender = "kids"
	GenderUnisex Gender = "unisex"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMen, GenderWomen, GenderKids, GenderUnisex:
		return true
	}
	return false
}

// Product represents a catalog entry. It is read-only outside the bulk loader.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Gender      Gender          `json:"gender"`
	Category    string          `json:"category"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	Description string          `json:"description"`
}

// HasColor reports whether color is one of the product's colors.
func (p Product) HasColor(color string) bool {
	return contains(p.Colors, color)
}

// HasSize reports whether size is one of the product's sizes.
func (p Product) HasSize(size string) bool {
	return contains(p.Sizes, size)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
