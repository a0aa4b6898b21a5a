package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS customers (
	id         TEXT PRIMARY KEY,
	active     INTEGER NOT NULL DEFAULT 1,
	state      TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	stage      TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS deliveries (
	id           TEXT PRIMARY KEY,
	customer_id  TEXT NOT NULL REFERENCES customers(id),
	data         TEXT NOT NULL,
	delivered_at DATETIME,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS saved_routes (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	snapshot   TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_customers_state ON customers(state);
CREATE INDEX IF NOT EXISTS idx_customers_stage ON customers(stage);
CREATE INDEX IF NOT EXISTS idx_deliveries_customer_id ON deliveries(customer_id);
CREATE INDEX IF NOT EXISTS idx_deliveries_delivered_at ON deliveries(delivered_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCustomer(ctx context.Context, c model.Customer) (*model.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	data, err := json.Marshal(c)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal customer")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO customers (id, active, state, city, stage, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, boolToInt(c.Active), c.State, c.City, string(c.LeadStage), string(data), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert customer")
	}
	return &c, nil
}

func (s *SQLiteStore) UpdateCustomer(ctx context.Context, c model.Customer) error {
	c.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal customer")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET active = ?, state = ?, city = ?, stage = ?, data = ?, updated_at = ? WHERE id = ?`,
		boolToInt(c.Active), c.State, c.City, string(c.LeadStage), string(data), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update customer %s", c.ID)
	}
	return checkRowsAffected(res, "customer", c.ID)
}

func (s *SQLiteStore) DeactivateCustomer(ctx context.Context, id string) error {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return eris.Errorf("sqlite: customer %s not found", id)
	}
	c.Active = false
	return s.UpdateCustomer(ctx, *c)
}

func (s *SQLiteStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM customers WHERE id = ?`, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get customer %s", id)
	}

	var c model.Customer
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal customer")
	}
	return &c, nil
}

func (s *SQLiteStore) ListCustomers(ctx context.Context, filter CustomerFilter) ([]model.Customer, error) {
	query := `SELECT data FROM customers`
	args := []any{}
	if filter.State != "" {
		query += ` WHERE state = ?`
		args = append(args, filter.State)
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list customers")
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan customer")
		}
		var c model.Customer
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal customer")
		}
		customers = append(customers, c)
	}
	return customers, eris.Wrap(rows.Err(), "sqlite: iterate customers")
}

func (s *SQLiteStore) ReplaceCustomers(ctx context.Context, customers []model.Customer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace customers")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return eris.Wrap(err, "sqlite: clear customers")
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
			return eris.Wrap(err, "sqlite: marshal customer")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO customers (id, active, state, city, stage, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, boolToInt(c.Active), c.State, c.City, string(c.LeadStage), string(data), c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert customer %s", c.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace customers")
}

func (s *SQLiteStore) CreateDelivery(ctx context.Context, d model.Delivery) (*model.Delivery, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(d)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal delivery")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deliveries (id, customer_id, data, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.CustomerID, string(data), d.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert delivery")
	}
	return &d, nil
}

func (s *SQLiteStore) MarkDelivered(ctx context.Context, id string) error {
	now := time.Now().UTC()

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM deliveries WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return eris.Errorf("sqlite: delivery %s not found", id)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: get delivery %s", id)
	}

	var d model.Delivery
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return eris.Wrap(err, "sqlite: unmarshal delivery")
	}
	d.DeliveredAt = &now

	updated, err := json.Marshal(d)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal delivery")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE deliveries SET data = ?, delivered_at = ? WHERE id = ?`,
		string(updated), now, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark delivered %s", id)
	}
	return checkRowsAffected(res, "delivery", id)
}

func (s *SQLiteStore) ListPendingDeliveries(ctx context.Context) ([]model.Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM deliveries WHERE delivered_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pending deliveries")
	}
	defer rows.Close()

	var deliveries []model.Delivery
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan delivery")
		}
		var d model.Delivery
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal delivery")
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, eris.Wrap(rows.Err(), "sqlite: iterate deliveries")
}

func (s *SQLiteStore) ListSavedRoutes(ctx context.Context) ([]model.SavedRoute, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot FROM saved_routes ORDER BY created_at, id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list saved routes")
	}
	defer rows.Close()

	var routes []model.SavedRoute
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan saved route")
		}
		var sr model.SavedRoute
		if err := json.Unmarshal([]byte(snapshot), &sr); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal saved route")
		}
		routes = append(routes, sr)
	}
	return routes, eris.Wrap(rows.Err(), "sqlite: iterate saved routes")
}

func (s *SQLiteStore) ReplaceSavedRoutes(ctx context.Context, routes []model.SavedRoute) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace saved routes")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_routes`); err != nil {
		return eris.Wrap(err, "sqlite: clear saved routes")
	}

	for _, sr := range routes {
		snapshot, err := json.Marshal(sr)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal saved route")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO saved_routes (id, name, snapshot, created_at) VALUES (?, ?, ?, ?)`,
			sr.ID, sr.Name, string(snapshot), sr.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert saved route %s", sr.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace saved routes")
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
