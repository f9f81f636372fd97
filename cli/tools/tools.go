// Package tools implements the one-shot utilities that work on the store
// directly, without going through the HTTP API.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/oaiiae/contacts-api/datastores"
)

// DefaultDBName is the database used by the utilities when none is configured.
const DefaultDBName = "contactsdb"

type contactRecord struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	FavoriteColor string `json:"favoriteColor"`
	Birthday      string `json:"birthday"`
}

// DecodeContacts reads a JSON array of contacts and validates each of them.
func DecodeContacts(r io.Reader) ([]*datastores.Contact, error) {
	var records []contactRecord
	err := json.NewDecoder(r).Decode(&records)
	if err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}

	contacts := make([]*datastores.Contact, 0, len(records))
	for i, rec := range records {
		c := &datastores.Contact{
			FirstName:     rec.FirstName,
			LastName:      rec.LastName,
			Email:         rec.Email,
			FavoriteColor: rec.FavoriteColor,
			Birthday:      rec.Birthday,
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("contact #%d: %w", i, err)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

type inserter interface {
	InsertMany(context.Context, []*datastores.Contact) ([]datastores.ContactID, error)
}

// Seed inserts the contacts read from r and reports how many were inserted to w.
func Seed(ctx context.Context, store inserter, r io.Reader, w io.Writer) error {
	contacts, err := DecodeContacts(r)
	if err != nil {
		return err
	}
	ids, err := store.InsertMany(ctx, contacts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Inserted %d contacts\n", len(ids))
	return err
}

type counter interface {
	Count(context.Context) (int64, error)
}

// Count reports the number of stored contacts to w.
func Count(ctx context.Context, store counter, w io.Writer) error {
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "contacts count = %d\n", n)
	return err
}
