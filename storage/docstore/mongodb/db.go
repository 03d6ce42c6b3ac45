// Package mongodb backs the document store contract with MongoDB. RunTx maps
// to a session transaction; on standalone servers without session support it
// degrades to direct ordered writes, which is safe because every engine
// fan-out step is idempotent and re-appliable.
package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ndishimyeemilien/report-sub001/core"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ core.Store = (*DB)(nil)

func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.MongoURI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "pinging mongo")
	}
	return &DB{client: client, db: client.Database(conf.Database.Name)}, nil
}

func (db *DB) Get(ctx context.Context, collection, id string) (core.Doc, error) {
	var m bson.M
	err := db.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return core.Doc{}, core.ErrDocNotFound
		}
		return core.Doc{}, wrapMongoErr(err, "getting document")
	}
	return toDoc(id, m)
}

func (db *DB) Query(ctx context.Context, collection string, filter core.Filter) ([]core.Doc, error) {
	if filter == nil {
		filter = core.Filter{}
	}
	cur, err := db.db.Collection(collection).Find(ctx, bson.M(filter))
	if err != nil {
		return nil, wrapMongoErr(err, "querying documents")
	}
	defer func() { _ = cur.Close(ctx) }()

	var docs []core.Doc
	for cur.Next(ctx) {
		var m bson.M
		if err = cur.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "decoding document")
		}
		id, _ := m["_id"].(string)
		doc, err := toDoc(id, m)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err = cur.Err(); err != nil {
		return nil, wrapMongoErr(err, "iterating documents")
	}
	return docs, nil
}

func (db *DB) Put(ctx context.Context, collection string, doc core.Doc) error {
	var m bson.M
	if err := bson.UnmarshalExtJSON(doc.Data, false, &m); err != nil {
		return errors.Wrap(err, "encoding document")
	}
	m["_id"] = doc.ID

	_, err := db.db.Collection(collection).ReplaceOne(
		ctx, bson.M{"_id": doc.ID}, m, options.Replace().SetUpsert(true))
	return wrapMongoErr(err, "putting document")
}

func (db *DB) Delete(ctx context.Context, collection, id string) error {
	_, err := db.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return wrapMongoErr(err, "deleting document")
}

func (db *DB) RunTx(ctx context.Context, fn func(ctx context.Context, tx core.Tx) error) error {
	sess, err := db.client.StartSession()
	if err != nil {
		// no session support: apply writes directly, in order
		return fn(ctx, db)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, db)
	})
	return wrapMongoErr(err, "running transaction")
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

func toDoc(id string, m bson.M) (core.Doc, error) {
	delete(m, "_id")
	data, err := bson.MarshalExtJSON(m, false, false)
	if err != nil {
		return core.Doc{}, errors.Wrap(err, "decoding document")
	}
	return core.Doc{ID: id, Data: data}, nil
}

// wrapMongoErr tags retryable driver failures as transient so core.RunInTx
// knows to back off and retry.
func wrapMongoErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if mongo.IsTimeout(err) {
		return errors.Wrap(core.NewTransientError(err), msg)
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult") {
			return errors.Wrap(core.NewTransientError(err), msg)
		}
	}
	return errors.Wrap(err, msg)
}
