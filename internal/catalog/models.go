package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Known angle names, in the order the storefront renders them. The angle
// vocabulary is open: variation images may carry any string angle, but the
// single-product shape only has slots for these five.
var KnownAngles = []string{"front", "back", "left", "right", "material"}

// Product is the canonical catalog entity. A product is either a single
// product (flat color/stock/angle-image fields) or a variation product
// (hasVariations true, variations populated); the two shapes are mutually
// exclusive.
//
// Optional fields are pointers without omitempty on the JSON side so every
// response carries the full field set, with absent values as explicit
// null. Stored documents that predate a field still normalize to the same
// external shape.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`

	CategoryID     string   `bson:"categoryId,omitempty" json:"categoryId"`
	SubcategoryIDs []string `bson:"subcategoryIds,omitempty" json:"subcategoryIds"`

	HasVariations bool        `bson:"hasVariations" json:"hasVariations"`
	Variations    []Variation `bson:"variations,omitempty" json:"variations"`

	// Single-product shape.
	BaseColor     *string `bson:"baseColor,omitempty" json:"baseColor"`
	StockQuantity *int    `bson:"stockQuantity,omitempty" json:"stockQuantity"`

	FrontImage    *string `bson:"frontImage,omitempty" json:"frontImage"`
	FrontAlt      *string `bson:"frontAlt,omitempty" json:"frontAlt"`
	BackImage     *string `bson:"backImage,omitempty" json:"backImage"`
	BackAlt       *string `bson:"backAlt,omitempty" json:"backAlt"`
	LeftImage     *string `bson:"leftImage,omitempty" json:"leftImage"`
	LeftAlt       *string `bson:"leftAlt,omitempty" json:"leftAlt"`
	RightImage    *string `bson:"rightImage,omitempty" json:"rightImage"`
	RightAlt      *string `bson:"rightAlt,omitempty" json:"rightAlt"`
	MaterialImage *string `bson:"materialImage,omitempty" json:"materialImage"`
	MaterialAlt   *string `bson:"materialAlt,omitempty" json:"materialAlt"`

	// Derived from the angle-image fields; recomputed on every
	// normalize, never edited directly.
	Angles []string `bson:"angles,omitempty" json:"angles"`

	PurchaseLimit      *PurchaseLimit `bson:"purchaseLimit,omitempty" json:"purchaseLimit"`
	EligibleForCoupons bool           `bson:"eligibleForCoupons" json:"eligibleForCoupons"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Variation is a purchasable color/style variant owned by one product.
type Variation struct {
	ID            string           `bson:"id" json:"id"`
	Color         Color            `bson:"color" json:"color"`
	Price         *float64         `bson:"price,omitempty" json:"price"`
	InStock       bool             `bson:"inStock" json:"inStock"`
	StockQuantity int              `bson:"stockQuantity" json:"stockQuantity"`
	Images        []VariationImage `bson:"images" json:"images"`
}

// Color describes a variation's color swatch.
type Color struct {
	Name        string `bson:"name" json:"name"`
	HexCode     string `bson:"hex_code" json:"hex_code"`
	SwatchImage string `bson:"swatch_image" json:"swatch_image"`
}

// VariationImage is one image in a variation's ordered image set.
type VariationImage struct {
	ID        string `bson:"id" json:"id"`
	URL       string `bson:"url" json:"url"`
	AltText   string `bson:"alt_text" json:"alt_text"`
	Angle     string `bson:"angle" json:"angle"`
	IsPrimary bool   `bson:"is_primary" json:"is_primary"`
}

// PurchaseLimit caps how many units one order may contain.
type PurchaseLimit struct {
	Enabled             bool   `bson:"enabled" json:"enabled"`
	MaxQuantityPerOrder int    `bson:"maxQuantityPerOrder" json:"maxQuantityPerOrder"`
	Message             string `bson:"message" json:"message"`
}

// ProductUpdate carries the updatable fields of a product. Nil pointers
// mean "leave unchanged".
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`

	CategoryID     *string   `json:"categoryId,omitempty"`
	SubcategoryIDs *[]string `json:"subcategoryIds,omitempty"`

	HasVariations *bool        `json:"hasVariations,omitempty"`
	Variations    *[]Variation `json:"variations,omitempty"`

	BaseColor     *string `json:"baseColor,omitempty"`
	StockQuantity *int    `json:"stockQuantity,omitempty"`

	FrontImage    *string `json:"frontImage,omitempty"`
	FrontAlt      *string `json:"frontAlt,omitempty"`
	BackImage     *string `json:"backImage,omitempty"`
	BackAlt       *string `json:"backAlt,omitempty"`
	LeftImage     *string `json:"leftImage,omitempty"`
	LeftAlt       *string `json:"leftAlt,omitempty"`
	RightImage    *string `json:"rightImage,omitempty"`
	RightAlt      *string `json:"rightAlt,omitempty"`
	MaterialImage *string `json:"materialImage,omitempty"`
	MaterialAlt   *string `json:"materialAlt,omitempty"`

	PurchaseLimit      *PurchaseLimit `json:"purchaseLimit,omitempty"`
	EligibleForCoupons *bool          `json:"eligibleForCoupons,omitempty"`
}

// ListResponse wraps one page of products with pagination metadata.
type ListResponse struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// DeriveAngles reports which named angle slots hold an image, in the
// canonical front/back/left/right/material order. It is the only source
// of truth for the angles list; the stored field is just a snapshot.
func DeriveAngles(p *Product) []string {
	slots := []struct {
		angle string
		image *string
	}{
		{"front", p.FrontImage},
		{"back", p.BackImage},
		{"left", p.LeftImage},
		{"right", p.RightImage},
		{"material", p.MaterialImage},
	}

	var angles []string
	for _, s := range slots {
		if s.image != nil && *s.image != "" {
			angles = append(angles, s.angle)
		}
	}
	return angles
}

// Normalize brings a product into its stable external shape: variation
// images without a URL are stripped, each variation keeps at most one
// primary image (the first marked one wins), and the angles list is
// recomputed from the angle-image fields.
func Normalize(p *Product) {
	for i := range p.Variations {
		NormalizeVariation(&p.Variations[i])
	}
	p.Angles = DeriveAngles(p)
}

// NormalizeVariation drops images without a URL and keeps at most one
// primary image per variation.
func NormalizeVariation(v *Variation) {
	kept := make([]VariationImage, 0, len(v.Images))
	seenPrimary := false
	for _, img := range v.Images {
		if img.URL == "" {
			continue
		}
		if img.IsPrimary {
			if seenPrimary {
				img.IsPrimary = false
			}
			seenPrimary = true
		}
		kept = append(kept, img)
	}
	v.Images = kept
}
