package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

// pgPool is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it for unit tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    pgPool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	state      TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	stage      TEXT NOT NULL DEFAULT '',
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS deliveries (
	id           TEXT PRIMARY KEY,
	customer_id  TEXT NOT NULL REFERENCES customers(id),
	data         JSONB NOT NULL,
	delivered_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS saved_routes (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	snapshot   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_state ON customers(state);
CREATE INDEX IF NOT EXISTS idx_customers_stage ON customers(stage);
CREATE INDEX IF NOT EXISTS idx_deliveries_customer_id ON deliveries(customer_id);
CREATE INDEX IF NOT EXISTS idx_deliveries_delivered_at ON deliveries(delivered_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, c model.Customer) (*model.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	data, err := json.Marshal(c)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal customer")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO customers (id, active, state, city, stage, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Active, c.State, c.City, string(c.LeadStage), data, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert customer")
	}
	return &c, nil
}

func (s *PostgresStore) UpdateCustomer(ctx context.Context, c model.Customer) error {
	c.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal customer")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE customers SET active = $1, state = $2, city = $3, stage = $4, data = $5, updated_at = $6 WHERE id = $7`,
		c.Active, c.State, c.City, string(c.LeadStage), data, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update customer %s", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: customer %s not found", c.ID)
	}
	return nil
}

func (s *PostgresStore) DeactivateCustomer(ctx context.Context, id string) error {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return eris.Errorf("postgres: customer %s not found", id)
	}
	c.Active = false
	return s.UpdateCustomer(ctx, *c)
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM customers WHERE id = $1`, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get customer %s", id)
	}

	var c model.Customer
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal customer")
	}
	return &c, nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context, filter CustomerFilter) ([]model.Customer, error) {
	query := `SELECT data FROM customers`
	args := []any{}
	if filter.State != "" {
		query += ` WHERE state = $1`
		args = append(args, filter.State)
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list customers")
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan customer")
		}
		var c model.Customer
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal customer")
		}
		customers = append(customers, c)
	}
	return customers, eris.Wrap(rows.Err(), "postgres: iterate customers")
}

func (s *PostgresStore) ReplaceCustomers(ctx context.Context, customers []model.Customer) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace customers")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM customers`); err != nil {
		return eris.Wrap(err, "postgres: clear customers")
	}

	for i := range customers {
		c := customers[i]
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}
		data, err := json.Marshal(c)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal customer")
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO customers (id, active, state, city, stage, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.Active, c.State, c.City, string(c.LeadStage), data, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert customer %s", c.ID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace customers")
}

func (s *PostgresStore) CreateDelivery(ctx context.Context, d model.Delivery) (*model.Delivery, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(d)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal delivery")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO deliveries (id, customer_id, data, created_at) VALUES ($1, $2, $3, $4)`,
		d.ID, d.CustomerID, data, d.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert delivery")
	}
	return &d, nil
}

func (s *PostgresStore) MarkDelivered(ctx context.Context, id string) error {
	now := time.Now().UTC()

	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM deliveries WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return eris.Errorf("postgres: delivery %s not found", id)
	}
	if err != nil {
		return eris.Wrapf(err, "postgres: get delivery %s", id)
	}

	var d model.Delivery
	if err := json.Unmarshal(data, &d); err != nil {
		return eris.Wrap(err, "postgres: unmarshal delivery")
	}
	d.DeliveredAt = &now

	updated, err := json.Marshal(d)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal delivery")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE deliveries SET data = $1, delivered_at = $2 WHERE id = $3`,
		updated, now, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark delivered %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: delivery %s not found", id)
	}
	return nil
}

func (s *PostgresStore) ListPendingDeliveries(ctx context.Context) ([]model.Delivery, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM deliveries WHERE delivered_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pending deliveries")
	}
	defer rows.Close()

	var deliveries []model.Delivery
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan delivery")
		}
		var d model.Delivery
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal delivery")
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, eris.Wrap(rows.Err(), "postgres: iterate deliveries")
}

func (s *PostgresStore) ListSavedRoutes(ctx context.Context) ([]model.SavedRoute, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT snapshot FROM saved_routes ORDER BY created_at, id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list saved routes")
	}
	defer rows.Close()

	var routes []model.SavedRoute
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, eris.Wrap(err, "postgres: scan saved route")
		}
		var sr model.SavedRoute
		if err := json.Unmarshal(snapshot, &sr); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal saved route")
		}
		routes = append(routes, sr)
	}
	return routes, eris.Wrap(rows.Err(), "postgres: iterate saved routes")
}

func (s *PostgresStore) ReplaceSavedRoutes(ctx context.Context, routes []model.SavedRoute) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace saved routes")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM saved_routes`); err != nil {
		return eris.Wrap(err, "postgres: clear saved routes")
	}

	for _, sr := range routes {
		snapshot, err := json.Marshal(sr)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal saved route")
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO saved_routes (id, name, snapshot, created_at) VALUES ($1, $2, $3, $4)`,
			sr.ID, sr.Name, snapshot, sr.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert saved route %s", sr.ID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace saved routes")
}
