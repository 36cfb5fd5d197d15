package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"submission-service/submission/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const emailUniqueIndex = "email_unique"

type MongoOptions struct {
	URL      string
	Username string
	Password string
	AppName  string
}

// ConnectMongo faz o parse da URL, aplica as credenciais e abre o pool de conexões.
// A URL inválida falha aqui, antes de qualquer I/O.
func ConnectMongo(ctx context.Context, o MongoOptions) (*mongo.Client, error) {
	if strings.TrimSpace(o.URL) == "" {
		return nil, errors.New("mongo url is empty")
	}
	opts := options.Client().ApplyURI(o.URL)
	if o.Username != "" || o.Password != "" {
		opts.SetAuth(options.Credential{Username: o.Username, Password: o.Password})
	}
	if o.AppName != "" {
		opts.SetAppName(o.AppName)
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongo options: %w", err)
	}
	return mongo.Connect(ctx, opts)
}

// MongoGateway implementa domain.Gateway sobre duas coleções do mesmo database.
type MongoGateway struct {
	client   *mongo.Client
	emails   *mongo.Collection
	messages *mongo.Collection
}

func NewMongoGateway(client *mongo.Client, database string) *MongoGateway {
	db := client.Database(database)
	return &MongoGateway{
		client:   client,
		emails:   db.Collection(domain.EmailsCollection),
		messages: db.Collection(domain.MessagesCollection),
	}
}

func (g *MongoGateway) Ping(ctx context.Context) error {
	if err := g.client.Ping(ctx, readpref.Primary()); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// EnsureIndexes cria o índice único em emails.email. É ele que torna
// InsertEmailIfAbsent atômico; sem o índice, duas inserções concorrentes passariam.
func (g *MongoGateway) EnsureIndexes(ctx context.Context) error {
	_, err := g.emails.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailUniqueIndex),
	})
	if err != nil {
		return storeError("ensure_indexes", err)
	}
	return nil
}

func (g *MongoGateway) EmailExists(ctx context.Context, email string) (bool, error) {
	err := g.emails.FindOne(
		ctx,
		bson.D{{Key: "email", Value: email}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, storeError(domain.OpEmailExists, err)
	}
	return true, nil
}

func (g *MongoGateway) InsertEmail(ctx context.Context, rec domain.EmailSubmission) error {
	if _, err := g.emails.InsertOne(ctx, rec); err != nil {
		return storeError(domain.OpInsertEmail, err)
	}
	return nil
}

func (g *MongoGateway) InsertEmailIfAbsent(ctx context.Context, rec domain.EmailSubmission) (domain.InsertResult, error) {
	err := g.InsertEmail(ctx, rec)
	if err == nil {
		return domain.Inserted, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExists, nil
	}
	return domain.Inserted, err
}

func (g *MongoGateway) InsertMessage(ctx context.Context, rec domain.MessageSubmission) error {
	if _, err := g.messages.InsertOne(ctx, rec); err != nil {
		return storeError(domain.OpInsertMessage, err)
	}
	return nil
}

func storeError(op string, err error) *domain.StoreError {
	return &domain.StoreError{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) domain.StoreKind {
	var marshalErr mongo.MarshalError
	switch {
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return domain.StoreTimeout
	case errors.Is(err, context.Canceled),
		errors.Is(err, mongo.ErrClientDisconnected),
		mongo.IsNetworkError(err):
		return domain.StoreConnectivity
	case errors.As(err, &marshalErr):
		return domain.StoreSerialization
	default:
		return domain.StoreServer
	}
}
