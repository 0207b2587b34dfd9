package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/memory"
)

const (
	locationsQuery = `SELECT id, name, fallback_id FROM locations ORDER BY id`
	inventoryQuery = `SELECT location_id, sku, available_qty FROM inventory_items ORDER BY location_id, sku`
)

// Querier is the subset of pgxpool.Pool the loader needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Connect opens a pgx pool and pings it
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// SnapshotLoader reads the current locations and stock levels into an
// immutable Network. Later database changes do not affect a loaded snapshot.
type SnapshotLoader struct {
	db     Querier
	logger *zap.Logger
}

// NewSnapshotLoader creates a loader over db
func NewSnapshotLoader(db Querier, logger *zap.Logger) *SnapshotLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotLoader{db: db, logger: logger}
}

type locationRow struct {
	id       string
	name     string
	fallback *string
}

// Load reads both tables and builds the network
func (l *SnapshotLoader) Load(ctx context.Context) (*memory.Network, error) {
	locations, err := l.loadLocations(ctx)
	if err != nil {
		return nil, err
	}

	b := memory.NewNetworkBuilder()
	names := make(map[string]string, len(locations))
	for _, row := range locations {
		if _, exists := b.ID(row.name); exists {
			return nil, fmt.Errorf("duplicate location name %s", row.name)
		}
		b.AddLocation(row.name)
		names[row.id] = row.name
	}

	for _, row := range locations {
		if row.fallback == nil {
			continue
		}
		fallback, ok := names[*row.fallback]
		if !ok {
			return nil, fmt.Errorf("location %s: %w: fallback id %s", row.name, entities.ErrUnknownLocation, *row.fallback)
		}
		if err := b.SetFallbackByName(row.name, fallback); err != nil {
			return nil, err
		}
	}

	items, err := l.loadInventory(ctx, b, names)
	if err != nil {
		return nil, err
	}

	network, err := b.Build()
	if err != nil {
		return nil, err
	}

	l.logger.Info("loaded location snapshot",
		zap.Int("locations", len(locations)),
		zap.Int("inventory_items", items))
	return network, nil
}

func (l *SnapshotLoader) loadLocations(ctx context.Context) ([]locationRow, error) {
	rows, err := l.db.Query(ctx, locationsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var result []locationRow
	for rows.Next() {
		var row locationRow
		if err := rows.Scan(&row.id, &row.name, &row.fallback); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locations: %w", err)
	}
	return result, nil
}

func (l *SnapshotLoader) loadInventory(ctx context.Context, b *memory.NetworkBuilder, names map[string]string) (int, error) {
	rows, err := l.db.Query(ctx, inventoryQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var locationID, sku string
		var available int64
		if err := rows.Scan(&locationID, &sku, &available); err != nil {
			return 0, fmt.Errorf("failed to scan inventory item: %w", err)
		}

		name, ok := names[locationID]
		if !ok {
			return 0, fmt.Errorf("inventory item %s: %w: location id %s", sku, entities.ErrUnknownLocation, locationID)
		}
		id, _ := b.ID(name)
		if err := b.AddStock(id, entities.ProductName(sku), entities.Quantity(available)); err != nil {
			return 0, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read inventory: %w", err)
	}
	return count, nil
}
