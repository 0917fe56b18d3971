package store

import (
	"context"
	"fmt"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/rs/zerolog/log"
)

// Backend is the product and order storage selected by STORE_BACKEND.
type Backend struct {
	Name     string
	Products product.Store
	Orders   order.Store
	close    func(context.Context) error
}

func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the configured backend. With migrate set the Postgres
// schema is brought up to date and the Mongo indexes are created.
func Open(ctx context.Context, cfg *config.Config, migrate bool) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := ConnectPostgres(ctx, cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := Migrate(db, cfg.DB.Migrations); err != nil {
				_ = db.Close()
				return nil, err
			}
			log.Info().Str("component", "store").Msg("postgres migrations applied")
		}
		s := NewPostgresStore(db)
		return &Backend{
			Name:     cfg.StoreBackend,
			Products: s,
			Orders:   s,
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case config.BackendMongo:
		client, err := ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		s := NewMongoStore(client.Database(cfg.Mongo.Database))
		if migrate {
			if err := s.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, fmt.Errorf("ensure mongo indexes: %w", err)
			}
		}
		return &Backend{
			Name:     cfg.StoreBackend,
			Products: s,
			Orders:   s,
			close:    client.Disconnect,
		}, nil

	default:
		s := NewMemoryStore()
		return &Backend{Name: config.BackendMemory, Products: s, Orders: s}, nil
	}
}
