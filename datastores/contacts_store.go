package datastores

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	// ContactID is the store-assigned identity of a [Contact], a MongoDB ObjectID.
	ContactID = primitive.ObjectID
	Contact   struct {
		ID            ContactID `bson:"_id,omitempty"`
		FirstName     string    `bson:"firstName"`
		LastName      string    `bson:"lastName"`
		Email         string    `bson:"email"`
		FavoriteColor string    `bson:"favoriteColor"`
		Birthday      string    `bson:"birthday"`
	}
)

type ContactsStore interface {
	List(context.Context) ([]*Contact, error)
	Get(context.Context, ContactID) (*Contact, error)
	Create(context.Context, *Contact) (ContactID, error)
	Replace(context.Context, ContactID, *Contact) error
	Delete(context.Context, ContactID) error
}

var (
	ErrObjectNotFound = errors.New("store: object not found")
	ErrInvalidID      = errors.New("store: invalid id")
	ErrValidation     = errors.New("store: validation failed")
)

// ParseContactID parses the hex form of a [ContactID].
// It returns an error matching [ErrInvalidID] for anything but 24 hex digits.
func ParseContactID(s string) (ContactID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// ValidationError reports a [Contact] missing at least one required field.
type ValidationError struct{ Missing []string }

func (e *ValidationError) Error() string {
	return "All fields are required: firstName, lastName, email, favoriteColor, birthday"
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validate checks that every attribute of c is set. Format is not checked.
func (c *Contact) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", c.FirstName},
		{"lastName", c.LastName},
		{"email", c.Email},
		{"favoriteColor", c.FavoriteColor},
		{"birthday", c.Birthday},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
