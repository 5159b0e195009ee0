package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/starseed/internal/types"
)

const (
	DefaultDatabase  = "starseed"
	DefaultBatchSize = 1000
)

// Providers are the config provider names served by this package.
var Providers = []string{"mongodb", "mongo"}

func IsProvider(provider string) bool {
	p := strings.ToLower(strings.TrimSpace(provider))
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

type Options struct {
	BatchSize    int
	DropExisting bool
	Logger       *zap.Logger
}

// Loader writes a dataset as one collection per entity and one document per
// row version. MongoDB has no multi-collection transaction outside replica
// sets, so a failed load may leave earlier collections populated.
type Loader struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
}

func Connect(ctx context.Context, url string) (*Loader, error) {
	clientOpts := options.Client().ApplyURI(url)
	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := DatabaseName(url)
	return &Loader{client: client, database: client.Database(dbName), dbName: dbName}, nil
}

// DatabaseName takes the database from the URL path, falling back to
// DefaultDatabase for bare or admin URLs.
func DatabaseName(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	slash := strings.Index(url, "/")
	if slash < 0 {
		return DefaultDatabase
	}
	dbPart := url[slash+1:]
	if idx := strings.Index(dbPart, "?"); idx >= 0 {
		dbPart = dbPart[:idx]
	}
	if dbPart == "" || dbPart == "admin" {
		return DefaultDatabase
	}
	return dbPart
}

func (l *Loader) Database() string { return l.dbName }

func (l *Loader) Close(ctx context.Context) error {
	if l.client != nil {
		return l.client.Disconnect(ctx)
	}
	return nil
}

// Load inserts every entity of ds in dataset order and returns the number of
// documents written per collection.
func (l *Loader) Load(ctx context.Context, ds *types.Dataset, opts Options) (map[string]int, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	counts := make(map[string]int, ds.Len())
	for name, in := range ds.All() {
		coll := l.database.Collection(name)
		if opts.DropExisting {
			if err := coll.Drop(ctx); err != nil {
				return counts, fmt.Errorf("failed to drop collection %s: %w", name, err)
			}
		}

		docs := Documents(in)
		for start := 0; start < len(docs); start += opts.BatchSize {
			end := min(start+opts.BatchSize, len(docs))
			if _, err := coll.InsertMany(ctx, docs[start:end]); err != nil {
				return counts, fmt.Errorf("failed to insert into %s: %w", name, err)
			}
		}
		counts[name] = len(docs)
		logger.Debug("loaded collection", zap.String("collection", name), zap.Int("documents", len(docs)))
	}
	return counts, nil
}

// Documents converts every row version of in to a document whose fields
// follow the entity's column order. Columns absent from a row are skipped.
func Documents(in *types.Instances) []bson.D {
	cols := in.Columns()
	docs := make([]bson.D, 0, in.RowCount())
	for row := range in.Rows() {
		doc := make(bson.D, 0, len(cols))
		for _, c := range cols {
			if v, ok := row[c]; ok {
				doc = append(doc, bson.E{Key: c, Value: v})
			}
		}
		docs = append(docs, doc)
	}
	return docs
}
