package catalog

import (
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultLimit is the page size when the caller does not ask for one.
	DefaultLimit = 10
	// MaxLimit caps the page size a single request may ask for.
	MaxLimit = 1000
	// CategoryAll is the sentinel meaning "no category constraint".
	CategoryAll = "all"
)

var (
	ErrInvalidPage  = errors.New("page must be >= 1")
	ErrInvalidLimit = errors.New("limit must be between 1 and 1000")
)

// ListParams describes one page request against the catalog.
type ListParams struct {
	Page       int
	Limit      int
	Search     string
	CategoryID string
}

// Validate rejects out-of-range pagination before any store access.
func (p ListParams) Validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return ErrInvalidLimit
	}
	return nil
}

// Skip is the number of documents to pass over before the requested page.
func (p ListParams) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata returned alongside every page.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination derives the page metadata for a filtered set of size
// total.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// buildFilter composes the match stage for a page request. Category is an
// equality constraint unless it is empty or the "all" sentinel. Search
// uses the weighted text index when available and degrades to a
// case-insensitive substring match over name and description otherwise.
func buildFilter(p ListParams, textIndex bool) bson.M {
	filter := bson.M{}

	if p.CategoryID != "" && p.CategoryID != CategoryAll {
		filter["categoryId"] = p.CategoryID
	}

	if p.Search != "" {
		if textIndex {
			filter["$text"] = bson.M{"$search": p.Search}
		} else {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(p.Search), Options: "i"}
			filter["$or"] = bson.A{
				bson.M{"name": re},
				bson.M{"description": re},
			}
		}
	}

	return filter
}

// listSort orders newest first, with _id as an explicit tie-break so
// pages stay stable when documents share a creation time.
func listSort() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}
