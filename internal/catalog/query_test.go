package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListParamsValidate(t *testing.T) {
	testCases := []struct {
		name    string
		params  ListParams
		wantErr error
	}{
		{"valid", ListParams{Page: 1, Limit: 10}, nil},
		{"valid at max limit", ListParams{Page: 1, Limit: 1000}, nil},
		{"page zero", ListParams{Page: 0, Limit: 10}, ErrInvalidPage},
		{"page negative", ListParams{Page: -3, Limit: 10}, ErrInvalidPage},
		{"limit zero", ListParams{Page: 1, Limit: 0}, ErrInvalidLimit},
		{"limit over max", ListParams{Page: 1, Limit: 1001}, ErrInvalidLimit},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestListParamsSkip(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, 10, ListParams{Page: 2, Limit: 10}.Skip())
	assert.Equal(t, 50, ListParams{Page: 11, Limit: 5}.Skip())
}

func TestNewPagination(t *testing.T) {
	// 25 matching items, page 2 of 10: middle page with both neighbours.
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, int64(25), p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	first := NewPagination(1, 10, 25)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrev)

	exact := NewPagination(2, 10, 20)
	assert.Equal(t, 2, exact.TotalPages)
	assert.False(t, exact.HasNext)
}

func TestBuildFilterCategory(t *testing.T) {
	assert.Empty(t, buildFilter(ListParams{Page: 1, Limit: 10}, false))
	assert.Empty(t, buildFilter(ListParams{Page: 1, Limit: 10, CategoryID: CategoryAll}, false),
		"the all sentinel means no category constraint")

	f := buildFilter(ListParams{Page: 1, Limit: 10, CategoryID: "c1"}, false)
	assert.Equal(t, bson.M{"categoryId": "c1"}, f)
}

func TestBuildFilterTextSearch(t *testing.T) {
	f := buildFilter(ListParams{Page: 1, Limit: 10, Search: "mug"}, true)
	assert.Equal(t, bson.M{"$search": "mug"}, f["$text"])
	assert.NotContains(t, f, "$or")
}

func TestBuildFilterSubstringFallback(t *testing.T) {
	f := buildFilter(ListParams{Page: 1, Limit: 10, Search: "mug"}, false)
	assert.NotContains(t, f, "$text")

	or, ok := f["$or"].(bson.A)
	assert.True(t, ok)
	assert.Len(t, or, 2)

	name := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, "mug", name.Pattern)
	assert.Equal(t, "i", name.Options)

	desc := or[1].(bson.M)["description"].(primitive.Regex)
	assert.Equal(t, "mug", desc.Pattern)
}

func TestBuildFilterEscapesRegexMeta(t *testing.T) {
	f := buildFilter(ListParams{Page: 1, Limit: 10, Search: "50% off (sale)"}, false)
	or := f["$or"].(bson.A)
	name := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, `50% off \(sale\)`, name.Pattern)
}

func TestBuildFilterCombinesCategoryAndSearch(t *testing.T) {
	f := buildFilter(ListParams{Page: 1, Limit: 10, Search: "mug", CategoryID: "c1"}, true)
	assert.Equal(t, "c1", f["categoryId"])
	assert.Equal(t, bson.M{"$search": "mug"}, f["$text"])
}
