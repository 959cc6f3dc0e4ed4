package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
)

// Connect opens the backend named by rawURL, prepares its schema and returns
// the stores bound to it. Callers own the result and must Close it.
func Connect(ctx context.Context, rawURL string, log *slog.Logger) (*repository.Stores, error) {
	backend, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendMongo:
		client, db, err := OpenMongo(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repository.NewStores(backend,
			repository.NewMongoUserRepo(db),
			repository.NewMongoActivityRepo(db),
			func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			client.Disconnect,
		), nil

	default:
		var db *sql.DB
		if backend == BackendMySQL {
			db, err = OpenMySQL(dsn)
		} else {
			db, err = OpenSQLite(dsn)
		}
		if err != nil {
			return nil, err
		}
		if err := Migrate(ctx, db, backend, log); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", backend, err)
		}
		return NewSQLStores(backend, db), nil
	}
}

// NewSQLStores binds the SQL repositories to an already migrated *sql.DB.
func NewSQLStores(backend string, db *sql.DB) *repository.Stores {
	return repository.NewStores(backend,
		repository.NewUserRepo(db),
		repository.NewActivityRepo(db),
		db.PingContext,
		func(context.Context) error { return db.Close() },
	)
}
