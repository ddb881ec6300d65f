package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/filehub/internal/common"
)

// MongoStore implements Store on MongoDB. Each logical table is a collection;
// the record key is the document _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

type mongoRecord struct {
	Key  string `bson:"_id"`
	Data []byte `bson:"data"`
}

// NewMongoStore connects to the given MongoDB instance and verifies the
// connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) collection(table string) (*mongo.Collection, error) {
	for _, name := range tables {
		if name == table {
			return s.db.Collection(table), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", common.ErrorUnknownTable, table)
}

func (s *MongoStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	coll, err := s.collection(table)
	if err != nil {
		return nil, err
	}

	var rec mongoRecord
	err = coll.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	return rec.Data, nil
}

func (s *MongoStore) Put(ctx context.Context, table, key string, data []byte) error {
	coll, err := s.collection(table)
	if err != nil {
		return err
	}

	_, err = coll.ReplaceOne(ctx,
		bson.M{"_id": key},
		mongoRecord{Key: key, Data: data},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}

	return nil
}

func (s *MongoStore) Exists(ctx context.Context, table, key string) (bool, error) {
	coll, err := s.collection(table)
	if err != nil {
		return false, err
	}

	n, err := coll.CountDocuments(ctx, bson.M{"_id": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo error: %w", err)
	}

	return n > 0, nil
}

func (s *MongoStore) Scan(ctx context.Context, table string) ([]Record, error) {
	coll, err := s.collection(table)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	defer cursor.Close(ctx)

	var records []Record
	for cursor.Next(ctx) {
		var rec mongoRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("mongo error: %w", err)
		}
		records = append(records, Record{Key: rec.Key, Data: rec.Data})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	return records, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
