package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"pod-catalog/internal/logger"
)

const (
	collectionName = "products"
	textIndexName  = "product_text"
)

// Store handles database operations for products
type Store struct {
	db       *mongo.Database
	products *mongo.Collection
}

// NewStore creates a new product store
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db, products: db.Collection(collectionName)}
}

// EnsureIndexes creates the catalog indexes. Creation runs unconditionally
// at startup; an index that already exists is treated as success, so a
// per-index failure is logged and skipped rather than failing the routine.
func (s *Store) EnsureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().
				SetName(textIndexName).
				SetWeights(bson.D{{Key: "name", Value: 10}, {Key: "description", Value: 5}}),
		},
		{
			Keys: bson.D{{Key: "categoryId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}

	for _, idx := range indexes {
		if _, err := s.products.Indexes().CreateOne(ctx, idx); err != nil {
			logger.Warnf("EnsureIndexes: create %v: %v", idx.Keys, err)
		}
	}
}

// hasTextIndex probes for the weighted text index. Any probe error means
// "no": search degrades to a substring match instead of failing the
// request.
func (s *Store) hasTextIndex(ctx context.Context) bool {
	specs, err := s.products.Indexes().ListSpecifications(ctx)
	if err != nil {
		logger.Debugf("hasTextIndex: list specifications: %v", err)
		return false
	}
	for _, spec := range specs {
		if spec != nil && spec.Name == textIndexName {
			return true
		}
	}
	return false
}

// ListPage answers "page P of products matching filters F": one count for
// the total, one sorted+skipped+limited fetch for the page.
func (s *Store) ListPage(ctx context.Context, params ListParams) ([]Product, Pagination, error) {
	if err := params.Validate(); err != nil {
		return nil, Pagination{}, err
	}

	textIndex := false
	if params.Search != "" {
		textIndex = s.hasTextIndex(ctx)
	}
	filter := buildFilter(params, textIndex)

	total, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("ListPage count: %w", err)
	}

	opts := options.Find().
		SetSort(listSort()).
		SetSkip(int64(params.Skip())).
		SetLimit(int64(params.Limit))

	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("ListPage find: %w", err)
	}
	defer cur.Close(ctx)

	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, Pagination{}, fmt.Errorf("ListPage decode: %w", err)
	}
	for i := range products {
		Normalize(&products[i])
	}

	return products, NewPagination(params.Page, params.Limit, total), nil
}

// GetAll is the unpaginated full-table fetch, kept for legacy bulk
// callers that predate pagination.
func (s *Store) GetAll(ctx context.Context) ([]Product, error) {
	cur, err := s.products.Find(ctx, bson.M{}, options.Find().SetSort(listSort()))
	if err != nil {
		return nil, fmt.Errorf("GetAll find: %w", err)
	}
	defer cur.Close(ctx)

	products := []Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("GetAll decode: %w", err)
	}
	for i := range products {
		Normalize(&products[i])
	}
	return products, nil
}

// GetByID retrieves a single product. A malformed id or a missing record
// both report not found (nil, nil).
func (s *Store) GetByID(ctx context.Context, id string) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var p Product
	err = s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	Normalize(&p)
	return &p, nil
}

// Create persists a new product with fresh timestamps and returns the
// normalized record. Optional fields the caller left unset stay unset;
// they surface as null downstream, never dropped.
func (s *Store) Create(ctx context.Context, p Product) (*Product, error) {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	Normalize(&p)

	if _, err := s.products.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return &p, nil
}

// Update merges the provided fields into an existing product, refreshes
// updatedAt, and returns the post-update record, or (nil, nil) when the
// id does not resolve.
func (s *Store) Update(ctx context.Context, id string, upd ProductUpdate) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := updateFields(upd)
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p Product
	err = s.products.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	Normalize(&p)
	return &p, nil
}

// Delete removes a product by id and reports whether exactly one record
// was removed. A malformed or unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := s.products.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("Delete: %w", err)
	}
	return res.DeletedCount == 1, nil
}

// HealthStatus is the structured payload of the health endpoint.
type HealthStatus struct {
	Status       string   `json:"status"`
	Database     string   `json:"database"`
	Collections  []string `json:"collections"`
	ProductCount int64    `json:"productCount"`
	Error        string   `json:"error,omitempty"`
}

// Health reports store connectivity, visible collections, and the product
// count. It never returns an error; failures become an unhealthy payload.
func (s *Store) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "ok", Database: s.db.Name(), Collections: []string{}}

	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}

	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	status.Collections = names

	count, err := s.products.CountDocuments(ctx, bson.M{})
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	status.ProductCount = count

	return status
}

// updateFields maps the non-nil members of a partial update onto their
// stored field names. Variations are normalized on the way in so the
// stored document never holds URL-less images or duplicate primaries.
func updateFields(upd ProductUpdate) bson.M {
	set := bson.M{}

	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.CategoryID != nil {
		set["categoryId"] = *upd.CategoryID
	}
	if upd.SubcategoryIDs != nil {
		set["subcategoryIds"] = *upd.SubcategoryIDs
	}
	if upd.HasVariations != nil {
		set["hasVariations"] = *upd.HasVariations
	}
	if upd.Variations != nil {
		vars := make([]Variation, len(*upd.Variations))
		copy(vars, *upd.Variations)
		for i := range vars {
			NormalizeVariation(&vars[i])
		}
		set["variations"] = vars
	}
	if upd.BaseColor != nil {
		set["baseColor"] = *upd.BaseColor
	}
	if upd.StockQuantity != nil {
		set["stockQuantity"] = *upd.StockQuantity
	}
	if upd.FrontImage != nil {
		set["frontImage"] = *upd.FrontImage
	}
	if upd.FrontAlt != nil {
		set["frontAlt"] = *upd.FrontAlt
	}
	if upd.BackImage != nil {
		set["backImage"] = *upd.BackImage
	}
	if upd.BackAlt != nil {
		set["backAlt"] = *upd.BackAlt
	}
	if upd.LeftImage != nil {
		set["leftImage"] = *upd.LeftImage
	}
	if upd.LeftAlt != nil {
		set["leftAlt"] = *upd.LeftAlt
	}
	if upd.RightImage != nil {
		set["rightImage"] = *upd.RightImage
	}
	if upd.RightAlt != nil {
		set["rightAlt"] = *upd.RightAlt
	}
	if upd.MaterialImage != nil {
		set["materialImage"] = *upd.MaterialImage
	}
	if upd.MaterialAlt != nil {
		set["materialAlt"] = *upd.MaterialAlt
	}
	if upd.PurchaseLimit != nil {
		set["purchaseLimit"] = *upd.PurchaseLimit
	}
	if upd.EligibleForCoupons != nil {
		set["eligibleForCoupons"] = *upd.EligibleForCoupons
	}

	return set
}
