package tools

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gotest.tools/v3/assert"

	"github.com/oaiiae/contacts-api/datastores"
)

const seedData = `[
  {"firstName": "Ann", "lastName": "Lee", "email": "a@x.com", "favoriteColor": "blue", "birthday": "1990-01-01"},
  {"firstName": "John", "lastName": "Smith", "email": "j@x.com", "favoriteColor": "red", "birthday": "1999-12-31"}
]`

type fakeStore struct {
	inserted []*datastores.Contact
	count    int64
	err      error
}

func (s *fakeStore) InsertMany(_ context.Context, cs []*datastores.Contact) ([]datastores.ContactID, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.inserted = append(s.inserted, cs...)
	ids := make([]datastores.ContactID, len(cs))
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	return ids, nil
}

func (s *fakeStore) Count(context.Context) (int64, error) { return s.count, s.err }

func TestDecodeContacts(t *testing.T) {
	contacts, err := DecodeContacts(strings.NewReader(seedData))
	assert.NilError(t, err)
	assert.Equal(t, len(contacts), 2)
	assert.Equal(t, contacts[1].Birthday, "1999-12-31")

	_, err = DecodeContacts(strings.NewReader(`[{"firstName": "Ann"}]`))
	assert.ErrorIs(t, err, datastores.ErrValidation)
	assert.ErrorContains(t, err, "contact #0")

	_, err = DecodeContacts(strings.NewReader(`{`))
	assert.ErrorContains(t, err, "decode contacts")
}

func TestSeed(t *testing.T) {
	store := &fakeStore{}
	var out bytes.Buffer
	assert.NilError(t, Seed(context.Background(), store, strings.NewReader(seedData), &out))
	assert.Equal(t, out.String(), "Inserted 2 contacts\n")
	assert.Equal(t, store.inserted[0].FirstName, "Ann")

	store = &fakeStore{}
	err := Seed(context.Background(), store, strings.NewReader(`[{}]`), &out)
	assert.ErrorIs(t, err, datastores.ErrValidation)
	assert.Equal(t, len(store.inserted), 0)

	boom := errors.New("boom")
	err = Seed(context.Background(), &fakeStore{err: boom}, strings.NewReader(seedData), &out)
	assert.ErrorIs(t, err, boom)
}

func TestCount(t *testing.T) {
	var out bytes.Buffer
	assert.NilError(t, Count(context.Background(), &fakeStore{count: 42}, &out))
	assert.Equal(t, out.String(), "contacts count = 42\n")

	boom := errors.New("boom")
	assert.ErrorIs(t, Count(context.Background(), &fakeStore{err: boom}, &out), boom)
}
