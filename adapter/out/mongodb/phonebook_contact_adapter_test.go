package mongodb

import (
	"errors"
	"testing"
	"time"

	"phonebook_server/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestBuildFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, buildFilter(nil))
	assert.Equal(t, bson.M{}, buildFilter(&domain.ContactFilter{}))

	f := buildFilter(&domain.ContactFilter{Search: "a.b+"})
	or, ok := f["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 3)

	for i, field := range []string{"firstName", "lastName", "phoneNumber"} {
		clause := or[i].(bson.M)
		re, ok := clause[field].(primitive.Regex)
		require.True(t, ok, field)
		assert.Equal(t, `a\.b\+`, re.Pattern, "metacharacters are escaped")
		assert.Equal(t, "i", re.Options)
	}
}

func TestBuildFindOptions(t *testing.T) {
	opts := buildFindOptions(&domain.FindOptions{Sort: domain.SortNewestFirst, Skip: 20, Limit: 10})
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)
	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(20), *opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(10), *opts.Limit)

	natural := buildFindOptions(&domain.FindOptions{Limit: 10})
	assert.Nil(t, natural.Sort)
	assert.Nil(t, natural.Skip)

	assert.NotNil(t, buildFindOptions(nil))
}

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	for _, id := range []string{"", "123", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		_, err := parseID(id)
		assert.ErrorIs(t, err, domain.ErrContactNotFound, id)
	}
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError("op", mongo.ErrNoDocuments), domain.ErrContactNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	err := mapError("op", dup)
	var ce *domain.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Phone number already exists", ce.Fields[domain.FieldPhoneNumber])

	boom := errors.New("connection reset")
	err = mapError("insert contact", boom)
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert contact", se.Op)
	assert.ErrorIs(t, err, boom)
}

func TestContactDocument_ToDomain(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := contactDocument{
		ID:          primitive.NewObjectID(),
		FirstName:   "Ada",
		LastName:    "Lovelace",
		PhoneNumber: "+44 1234",
		Address:     "London",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	c := doc.toDomain()
	assert.Equal(t, doc.ID.Hex(), c.ID)
	assert.Equal(t, "Ada", c.FirstName)
	assert.Equal(t, "Lovelace", c.LastName)
	assert.Equal(t, "+44 1234", c.PhoneNumber)
	assert.Equal(t, "London", c.Address)
	assert.Equal(t, now, c.CreatedAt)
}
