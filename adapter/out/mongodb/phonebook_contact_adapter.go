// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"phonebook_server/core/domain"
	"phonebook_server/core/port/out"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Contact Adapter
// =============================================================================

const collectionContacts = "contacts"

// ContactAdapter implements out.ContactRepository using MongoDB.
type ContactAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
	now        func() time.Time
}

// NewContactAdapter creates a new MongoDB contact adapter.
func NewContactAdapter(db *mongo.Database) *ContactAdapter {
	return &ContactAdapter{
		db:         db,
		collection: db.Collection(collectionContacts),
		now:        time.Now,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *ContactAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phoneNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "firstName", Value: "text"},
				{Key: "lastName", Value: "text"},
				{Key: "phoneNumber", Value: "text"},
			},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

type contactDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	FirstName   string             `bson:"firstName"`
	LastName    string             `bson:"lastName"`
	PhoneNumber string             `bson:"phoneNumber"`
	Address     string             `bson:"address"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *contactDocument) toDomain() *domain.Contact {
	return &domain.Contact{
		ID:          d.ID.Hex(),
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		PhoneNumber: d.PhoneNumber,
		Address:     d.Address,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// =============================================================================
// Query Operations
// =============================================================================

// Find returns contacts matching filter in the requested order.
func (a *ContactAdapter) Find(ctx context.Context, filter *domain.ContactFilter, opts *domain.FindOptions) ([]*domain.Contact, error) {
	cursor, err := a.collection.Find(ctx, buildFilter(filter), buildFindOptions(opts))
	if err != nil {
		return nil, domain.NewStorageError("find contacts", err)
	}
	defer cursor.Close(ctx)

	var docs []contactDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.NewStorageError("find contacts", err)
	}

	contacts := make([]*domain.Contact, 0, len(docs))
	for i := range docs {
		contacts = append(contacts, docs[i].toDomain())
	}
	return contacts, nil
}

// Count returns the number of contacts matching filter.
func (a *ContactAdapter) Count(ctx context.Context, filter *domain.ContactFilter) (int64, error) {
	n, err := a.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, domain.NewStorageError("count contacts", err)
	}
	return n, nil
}

// FindByID returns one contact.
func (a *ContactAdapter) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc contactDocument
	if err := a.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapError("find contact", err)
	}
	return doc.toDomain(), nil
}

// =============================================================================
// Write Operations
// =============================================================================

// Insert stores a new contact.
func (a *ContactAdapter) Insert(ctx context.Context, fields *domain.ContactFields) (*domain.Contact, error) {
	f := fields.Trimmed()
	if err := f.Check(); err != nil {
		return nil, err
	}

	now := a.now().UTC().Truncate(time.Millisecond)
	doc := contactDocument{
		ID:          primitive.NewObjectID(),
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		PhoneNumber: f.PhoneNumber,
		Address:     f.Address,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return nil, mapError("insert contact", err)
	}
	return doc.toDomain(), nil
}

// UpdateByID replaces the four editable fields and returns the updated contact.
func (a *ContactAdapter) UpdateByID(ctx context.Context, id string, fields *domain.ContactFields) (*domain.Contact, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	f := fields.Trimmed()
	if err := f.Check(); err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"firstName":   f.FirstName,
		"lastName":    f.LastName,
		"phoneNumber": f.PhoneNumber,
		"address":     f.Address,
		"updatedAt":   a.now().UTC().Truncate(time.Millisecond),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc contactDocument
	if err := a.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mapError("update contact", err)
	}
	return doc.toDomain(), nil
}

// DeleteByID removes a contact and returns it.
func (a *ContactAdapter) DeleteByID(ctx context.Context, id string) (*domain.Contact, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc contactDocument
	if err := a.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapError("delete contact", err)
	}
	return doc.toDomain(), nil
}

// Ping checks the server behind the collection.
func (a *ContactAdapter) Ping(ctx context.Context) error {
	return a.db.Client().Ping(ctx, nil)
}

// =============================================================================
// Helpers
// =============================================================================

// buildFilter matches the search text case-insensitively as a literal
// substring of any of the three searchable fields.
func buildFilter(filter *domain.ContactFilter) bson.M {
	if filter.IsEmpty() {
		return bson.M{}
	}

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"firstName": pattern},
		bson.M{"lastName": pattern},
		bson.M{"phoneNumber": pattern},
	}}
}

func buildFindOptions(opts *domain.FindOptions) *options.FindOptions {
	findOpts := options.Find()
	if opts == nil {
		return findOpts
	}
	if opts.Sort == domain.SortNewestFirst {
		findOpts.SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	return findOpts
}

// parseID reports a malformed ObjectID as not found.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrContactNotFound
	}
	return oid, nil
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrContactNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.NewDuplicatePhoneError()
	default:
		return domain.NewStorageError(op, err)
	}
}

var _ out.ContactRepository = (*ContactAdapter)(nil)
