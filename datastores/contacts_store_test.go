package datastores

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
)

func validContact() *Contact {
	return &Contact{
		FirstName:     "Ann",
		LastName:      "Lee",
		Email:         "a@x.com",
		FavoriteColor: "blue",
		Birthday:      "1990-01-01",
	}
}

func TestContactValidate(t *testing.T) {
	assert.NilError(t, validContact().Validate())

	for name, unset := range map[string]func(*Contact){
		"firstName":     func(c *Contact) { c.FirstName = "" },
		"lastName":      func(c *Contact) { c.LastName = "" },
		"email":         func(c *Contact) { c.Email = "" },
		"favoriteColor": func(c *Contact) { c.FavoriteColor = "" },
		"birthday":      func(c *Contact) { c.Birthday = "" },
	} {
		t.Run(name, func(t *testing.T) {
			c := validContact()
			unset(c)
			err := c.Validate()
			assert.ErrorIs(t, err, ErrValidation)
			assert.Error(t, err, "All fields are required: firstName, lastName, email, favoriteColor, birthday")

			var verr *ValidationError
			assert.Assert(t, errors.As(err, &verr))
			assert.DeepEqual(t, verr.Missing, []string{name})
		})
	}

	t.Run("all missing", func(t *testing.T) {
		err := new(Contact).Validate()
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, len(err.(*ValidationError).Missing), 5)
	})

	t.Run("format is not checked", func(t *testing.T) {
		c := validContact()
		c.Email, c.Birthday = "not an email", "yesterday"
		assert.NilError(t, c.Validate())
	})
}

func TestParseContactID(t *testing.T) {
	id, err := ParseContactID("66f1c2a9e4b0a1b2c3d4e5f6")
	assert.NilError(t, err)
	assert.Equal(t, id.Hex(), "66f1c2a9e4b0a1b2c3d4e5f6")

	for _, s := range []string{
		"",
		"123",
		"66f1c2a9e4b0a1b2c3d4e5f",   // too short
		"66f1c2a9e4b0a1b2c3d4e5f6a", // too long
		"zzf1c2a9e4b0a1b2c3d4e5f6",  // not hex
	} {
		_, err := ParseContactID(s)
		assert.ErrorIs(t, err, ErrInvalidID, "input %q", s)
		assert.Assert(t, !errors.Is(err, ErrObjectNotFound))
	}
}
