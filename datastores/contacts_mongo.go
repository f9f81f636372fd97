package datastores

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const contactsCollection = "contacts"

// Handle gives access to a connected database, see [Mongo.Database].
type Handle interface {
	Database() (*mongo.Database, error)
}

// ContactsMongo implements [ContactsStore] on the "contacts" collection.
type ContactsMongo struct {
	Handle Handle
}

var _ ContactsStore = (*ContactsMongo)(nil)

func (s *ContactsMongo) collection() (*mongo.Collection, error) {
	db, err := s.Handle.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(contactsCollection), nil
}

func (s *ContactsMongo) List(ctx context.Context) ([]*Contact, error) {
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	contacts := []*Contact{}
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	return contacts, nil
}

func (s *ContactsMongo) Get(ctx context.Context, id ContactID) (*Contact, error) {
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}
	var c Contact
	err = coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&c)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrObjectNotFound
	case err != nil:
		return nil, fmt.Errorf("find contact %s: %w", id.Hex(), err)
	}
	return &c, nil
}

func (s *ContactsMongo) Create(ctx context.Context, c *Contact) (ContactID, error) {
	coll, err := s.collection()
	if err != nil {
		return primitive.NilObjectID, err
	}
	doc := *c
	doc.ID = primitive.NilObjectID
	res, err := coll.InsertOne(ctx, &doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert contact: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert contact: unexpected id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *ContactsMongo) Replace(ctx context.Context, id ContactID, c *Contact) error {
	coll, err := s.collection()
	if err != nil {
		return err
	}
	doc := *c
	doc.ID = primitive.NilObjectID
	res, err := coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, &doc)
	if err != nil {
		return fmt.Errorf("replace contact %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrObjectNotFound
	}
	return nil
}

func (s *ContactsMongo) Delete(ctx context.Context, id ContactID) error {
	coll, err := s.collection()
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete contact %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrObjectNotFound
	}
	return nil
}

// InsertMany stores cs as new contacts in one round trip and returns their ids.
func (s *ContactsMongo) InsertMany(ctx context.Context, cs []*Contact) ([]ContactID, error) {
	if len(cs) == 0 {
		return nil, nil
	}
	coll, err := s.collection()
	if err != nil {
		return nil, err
	}
	docs := make([]any, 0, len(cs))
	for _, c := range cs {
		doc := *c
		doc.ID = primitive.NewObjectID()
		docs = append(docs, &doc)
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insert contacts: %w", err)
	}
	ids := make([]ContactID, 0, len(res.InsertedIDs))
	for _, v := range res.InsertedIDs {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Count returns the number of stored contacts.
func (s *ContactsMongo) Count(ctx context.Context) (int64, error) {
	coll, err := s.collection()
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return n, nil
}
