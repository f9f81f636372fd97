package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/contacts-api/datastores"
)

type Contacts struct {
	Store        ds.ContactsStore
	ErrorHandler func(context.Context, error)
}

var contactsTags = []string{"Contacts"}

type ContactModel struct {
	ID string `json:"_id" readOnly:"true" example:"66f1c2a9e4b0a1b2c3d4e5f6" doc:"MongoDB ObjectId"`

	ContactInput
}

// ContactInput documents the body of create and replace requests. Bodies are
// decoded loosely by [decodeContact] and checked by [ds.Contact.Validate].
type ContactInput struct {
	FirstName     string `json:"firstName"     example:"Ann"`
	LastName      string `json:"lastName"      example:"Lee"`
	Email         string `json:"email"         example:"a@x.com"    format:"email"`
	FavoriteColor string `json:"favoriteColor" example:"blue"`
	Birthday      string `json:"birthday"      example:"1990-01-01" format:"date"`
}

var errMalformedBody = errors.New("malformed JSON body")

// decodeContact reads a contact from a JSON body of any shape. A body that is
// not an object yields an empty contact. Falsy values (null, false, 0, "")
// are left empty, other non-string values are kept as their JSON text.
func decodeContact(body []byte) (*ds.Contact, error) {
	c := new(ds.Contact)
	if len(bytes.TrimSpace(body)) == 0 {
		return c, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	err := dec.Decode(&v)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after top-level value")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedBody, err)
	}

	fields, _ := v.(map[string]any)
	c.FirstName = text(fields["firstName"])
	c.LastName = text(fields["lastName"])
	c.Email = text(fields["email"])
	c.FavoriteColor = text(fields["favoriteColor"])
	c.Birthday = text(fields["birthday"])
	return c, nil
}

func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	case json.Number:
		f, err := v.Float64()
		if err == nil && f == 0 {
			return ""
		}
		return v.String()
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// contactRequestBody documents [ContactInput] as the JSON request body.
func contactRequestBody(api huma.API) *huma.RequestBody {
	return &huma.RequestBody{
		Content: map[string]*huma.MediaType{
			"application/json": {
				Schema: api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(ContactInput{}), true, ""),
			},
		},
	}
}

func contactModel(c *ds.Contact) ContactModel {
	return ContactModel{
		ID: c.ID.Hex(),
		ContactInput: ContactInput{
			FirstName:     c.FirstName,
			LastName:      c.LastName,
			Email:         c.Email,
			FavoriteColor: c.FavoriteColor,
			Birthday:      c.Birthday,
		},
	}
}

// statusError maps store errors to the response the client gets.
// Unknown errors become a 500 that carries no detail.
func statusError(err error) error {
	var se huma.StatusError
	switch {
	case errors.As(err, &se):
		return err
	case errors.Is(err, errMalformedBody):
		return newError(http.StatusBadRequest, "Malformed JSON body", err)
	case errors.Is(err, ds.ErrValidation):
		return newError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, ds.ErrInvalidID):
		return newError(http.StatusBadRequest, "Invalid id format", err)
	case errors.Is(err, ds.ErrObjectNotFound):
		return newError(http.StatusNotFound, "Contact not found", err)
	default:
		return newError(http.StatusInternalServerError, "Internal server error", err)
	}
}

func register[I, O any](api huma.API, h *Contacts, op huma.Operation, fn handler[I, O], codes ...int) {
	op.Tags = contactsTags
	opErrors(api, codes...)(&op)
	huma.Register(api, op, handlerWithErrorHandler(func(ctx context.Context, i *I) (*O, error) {
		o, err := fn(ctx, i)
		if err != nil {
			return nil, statusError(err)
		}
		return o, nil
	}, h.ErrorHandler))
}

func (h *Contacts) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	register(api, h, huma.Operation{
		OperationID: "list-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts",
		Summary:     "Get all contacts",
	}, h.list, http.StatusInternalServerError)
}

type ContactsListOutput struct {
	Body []ContactModel
}

func (h *Contacts) list(ctx context.Context, _ *struct{}) (*ContactsListOutput, error) {
	contacts, err := h.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	body := make([]ContactModel, 0, len(contacts))
	for _, contact := range contacts {
		body = append(body, contactModel(contact))
	}

	return &ContactsListOutput{Body: body}, nil
}

func (h *Contacts) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	register(api, h, huma.Operation{
		OperationID: "get-contact",
		Method:      http.MethodGet,
		Path:        "/contacts/{id}",
		Summary:     "Get a contact by id",
	}, h.get, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError)
}

type ContactsGetOutput struct {
	Body ContactModel
}

func (h *Contacts) get(ctx context.Context, input *struct {
	ID string `path:"id" doc:"ID of the contact to get"`
}) (*ContactsGetOutput, error) {
	id, err := ds.ParseContactID(input.ID)
	if err != nil {
		return nil, err
	}

	contact, err := h.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ContactsGetOutput{Body: contactModel(contact)}, nil
}

func (h *Contacts) RegisterCreate(api huma.API) { // called by [huma.AutoRegister]
	register(api, h, huma.Operation{
		OperationID:   "create-contact",
		Method:        http.MethodPost,
		Path:          "/contacts",
		Summary:       "Create a new contact",
		Description:   "Creates a contact and returns its id.",
		DefaultStatus: http.StatusCreated,
		RequestBody:   contactRequestBody(api),
	}, h.create, http.StatusBadRequest, http.StatusInternalServerError)
}

type ContactsCreateOutput struct {
	Body struct {
		ID string `json:"id" example:"66f1c2a9e4b0a1b2c3d4e5f6" doc:"ID of the new contact"`
	}
}

func (h *Contacts) create(ctx context.Context, input *struct {
	RawBody []byte `contentType:"application/json" required:"false"`
}) (*ContactsCreateOutput, error) {
	contact, err := decodeContact(input.RawBody)
	if err != nil {
		return nil, err
	}
	err = contact.Validate()
	if err != nil {
		return nil, err
	}

	id, err := h.Store.Create(ctx, contact)
	if err != nil {
		return nil, err
	}

	out := &ContactsCreateOutput{}
	out.Body.ID = id.Hex()
	return out, nil
}

func (h *Contacts) RegisterReplace(api huma.API) { // called by [huma.AutoRegister]
	register(api, h, huma.Operation{
		OperationID: "replace-contact",
		Method:      http.MethodPut,
		Path:        "/contacts/{id}",
		Summary:     "Update (replace) a contact by id",
		RequestBody: contactRequestBody(api),
	}, h.replace, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError)
}

func (h *Contacts) replace(ctx context.Context, input *struct {
	ID      string `path:"id" doc:"ID of the contact to replace"`
	RawBody []byte `contentType:"application/json" required:"false"`
}) (*struct{}, error) {
	contact, err := decodeContact(input.RawBody)
	if err != nil {
		return nil, err
	}
	err = contact.Validate()
	if err != nil {
		return nil, err
	}

	id, err := ds.ParseContactID(input.ID)
	if err != nil {
		return nil, err
	}

	return nil, h.Store.Replace(ctx, id, contact)
}

func (h *Contacts) RegisterDelete(api huma.API) { // called by [huma.AutoRegister]
	register(api, h, huma.Operation{
		OperationID: "delete-contact",
		Method:      http.MethodDelete,
		Path:        "/contacts/{id}",
		Summary:     "Delete a contact by id",
	}, h.del, http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError)
}

func (h *Contacts) del(ctx context.Context, input *struct {
	ID string `path:"id" doc:"ID of the contact to delete"`
}) (*struct{}, error) {
	id, err := ds.ParseContactID(input.ID)
	if err != nil {
		return nil, err
	}

	return nil, h.Store.Delete(ctx, id)
}
