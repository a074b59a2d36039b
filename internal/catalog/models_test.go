package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDeriveAngles(t *testing.T) {
	p := &Product{FrontImage: strPtr("u1")}
	assert.Equal(t, []string{"front"}, DeriveAngles(p))

	p = &Product{
		FrontImage:    strPtr("u1"),
		LeftImage:     strPtr("u3"),
		MaterialImage: strPtr("u5"),
	}
	assert.Equal(t, []string{"front", "left", "material"}, DeriveAngles(p),
		"angles follow the canonical order regardless of assignment order")

	assert.Nil(t, DeriveAngles(&Product{}))
	assert.Nil(t, DeriveAngles(&Product{BackImage: strPtr("")}),
		"an empty image url does not produce an angle")
}

func TestNormalizeRecomputesAngles(t *testing.T) {
	p := &Product{
		FrontImage: strPtr("u1"),
		// Stale snapshot from a previous edit.
		Angles: []string{"front", "back"},
	}
	Normalize(p)
	assert.Equal(t, []string{"front"}, p.Angles)
}

func TestNormalizeVariationStripsEmptyURLs(t *testing.T) {
	v := Variation{
		ID: "v1",
		Images: []VariationImage{
			{ID: "i1", URL: "https://img/1", Angle: "front"},
			{ID: "i2", URL: "", Angle: "back"},
			{ID: "i3", URL: "https://img/3", Angle: "left"},
		},
	}
	NormalizeVariation(&v)

	require.Len(t, v.Images, 2)
	assert.Equal(t, "i1", v.Images[0].ID)
	assert.Equal(t, "i3", v.Images[1].ID)
}

func TestNormalizeVariationSinglePrimary(t *testing.T) {
	v := Variation{
		ID: "v1",
		Images: []VariationImage{
			{ID: "i1", URL: "u1", Angle: "front", IsPrimary: true},
			{ID: "i2", URL: "u2", Angle: "back", IsPrimary: true},
			{ID: "i3", URL: "u3", Angle: "left", IsPrimary: true},
		},
	}
	NormalizeVariation(&v)

	require.Len(t, v.Images, 3)
	assert.True(t, v.Images[0].IsPrimary, "first marked primary wins")
	assert.False(t, v.Images[1].IsPrimary)
	assert.False(t, v.Images[2].IsPrimary)
}

func TestNormalizeLeavesOtherVariationsAlone(t *testing.T) {
	p := &Product{
		HasVariations: true,
		Variations: []Variation{
			{ID: "v1", Images: []VariationImage{{ID: "a", URL: "u", IsPrimary: true}}},
			{ID: "v2", Images: []VariationImage{{ID: "b", URL: "u", IsPrimary: true}}},
		},
	}
	Normalize(p)

	assert.True(t, p.Variations[0].Images[0].IsPrimary)
	assert.True(t, p.Variations[1].Images[0].IsPrimary,
		"primary exclusivity is scoped to one variation")
}

func TestProductJSONStableShape(t *testing.T) {
	// Absent optional fields must surface as explicit null so consumers
	// always see the same field set.
	b, err := json.Marshal(Product{Name: "Mug", Price: 10, FrontImage: strPtr("u1")})
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))

	assert.Contains(t, m, "frontImage")
	assert.Contains(t, m, "backImage")
	assert.Contains(t, m, "purchaseLimit")
	assert.Contains(t, m, "variations")
	assert.Equal(t, `"u1"`, string(m["frontImage"]))
	assert.Equal(t, "null", string(m["backImage"]))
	assert.Equal(t, "null", string(m["purchaseLimit"]))
}

func TestProductJSONPurchaseLimitVerbatim(t *testing.T) {
	p := Product{
		Name:  "Mug",
		Price: 10,
		PurchaseLimit: &PurchaseLimit{
			Enabled:             true,
			MaxQuantityPerOrder: 3,
			Message:             "limit 3 per order",
		},
	}
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var back Product
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotNil(t, back.PurchaseLimit)
	assert.Equal(t, *p.PurchaseLimit, *back.PurchaseLimit)
}
