package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/lib/pq"

	"printshop-backend/internal/domain"
)

// PostgresStore bundles the order, payment and catalog repositories over one
// database handle. Line items are snapshotted as JSON with the order so
// historical prices stay frozen.
type PostgresStore struct {
	db       *sql.DB
	Orders   *PostgresOrderRepo
	Payments *PostgresPaymentRepo
	Catalog  *PostgresCatalogRepo
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{
		db:       db,
		Orders:   &PostgresOrderRepo{db: db},
		Payments: &PostgresPaymentRepo{db: db},
		Catalog:  &PostgresCatalogRepo{db: db},
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS services (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		unit_price BIGINT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		items TEXT NOT NULL,
		total_amount BIGINT NOT NULL,
		fulfillment TEXT NOT NULL,
		payment TEXT NOT NULL,
		document_ref TEXT,
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS payments (
		attempt_id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		amount BIGINT NOT NULL,
		channel TEXT,
		status TEXT NOT NULL,
		proof_ref TEXT,
		submitted_at TIMESTAMPTZ NOT NULL
	);`)
	return err
}

type PostgresOrderRepo struct {
	db *sql.DB
}

const orderColumns = `order_id,customer_id,items,total_amount,fulfillment,payment,document_ref,note,created_at,updated_at`

func (r *PostgresOrderRepo) Put(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (order_id) DO UPDATE SET fulfillment=$5,payment=$6,document_ref=$7,note=$8,updated_at=$10`,
		o.OrderID, o.CustomerID, string(items), o.TotalAmount, string(o.Fulfillment), string(o.Payment), o.DocumentRef, o.Note, o.CreatedAt, o.UpdatedAt)
	return err
}

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	var items string
	err := row.Scan(&o.OrderID, &o.CustomerID, &items, &o.TotalAmount,
		(*string)(&o.Fulfillment), (*string)(&o.Payment), &o.DocumentRef, &o.Note, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PostgresOrderRepo) Get(ctx context.Context, id string) (*domain.Order, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id=$1`, id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (r *PostgresOrderRepo) List(ctx context.Context, page, pageSize int) ([]domain.Order, int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]domain.Order, 0, pageSize)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresOrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id=$1`, id)
	return err
}

type PostgresPaymentRepo struct {
	db *sql.DB
}

const paymentColumns = `attempt_id,order_id,customer_id,amount,channel,status,proof_ref,submitted_at`

func (r *PostgresPaymentRepo) Append(ctx context.Context, a *domain.PaymentAttempt) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.AttemptID, a.OrderID, a.CustomerID, a.Amount, a.Channel, string(a.Status), a.ProofRef, a.SubmittedAt)
	return err
}

func (r *PostgresPaymentRepo) Get(ctx context.Context, id string) (*domain.PaymentAttempt, bool, error) {
	var a domain.PaymentAttempt
	err := r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE attempt_id=$1`, id).
		Scan(&a.AttemptID, &a.OrderID, &a.CustomerID, &a.Amount, &a.Channel, (*string)(&a.Status), &a.ProofRef, &a.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &a, true, nil
}

func (r *PostgresPaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.PaymentAttempt, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id=$1 ORDER BY submitted_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.PaymentAttempt
	for rows.Next() {
		var a domain.PaymentAttempt
		if err := rows.Scan(&a.AttemptID, &a.OrderID, &a.CustomerID, &a.Amount, &a.Channel, (*string)(&a.Status), &a.ProofRef, &a.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresPaymentRepo) Update(ctx context.Context, a *domain.PaymentAttempt) error {
	_, err := r.db.ExecContext(ctx, `UPDATE payments SET status=$2 WHERE attempt_id=$1`, a.AttemptID, string(a.Status))
	return err
}

type PostgresCatalogRepo struct {
	db *sql.DB
}

func (r *PostgresCatalogRepo) ListActive(ctx context.Context) ([]domain.ServiceOption, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id,name,category,unit_price,active FROM services WHERE active ORDER BY unit_price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ServiceOption
	for rows.Next() {
		var opt domain.ServiceOption
		if err := rows.Scan(&opt.ID, &opt.Name, (*string)(&opt.Category), &opt.UnitPrice, &opt.Active); err != nil {
			return nil, err
		}
		out = append(out, opt)
	}
	return out, rows.Err()
}

func (r *PostgresCatalogRepo) Upsert(ctx context.Context, opt *domain.ServiceOption) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO services (id,name,category,unit_price,active)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET name=$2,category=$3,unit_price=$4,active=$5`,
		opt.ID, opt.Name, string(opt.Category), opt.UnitPrice, opt.Active)
	return err
}

func (r *PostgresCatalogRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE services SET active=FALSE WHERE id=$1`, id)
	return err
}
