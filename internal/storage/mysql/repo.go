package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"elitestay/internal/domain"
)

const errDupEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects with the pool settings the API and seeder share.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return db, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanProperty(s scanner) (domain.Property, error) {
	var p domain.Property
	err := s.Scan(&p.ID, &p.Name, &p.Location, &p.Price, &p.ImageURL)
	return p, err
}

func (r *Repo) ListProperties(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx, listPropertiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Property, 0, 64)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProperty(ctx context.Context, id domain.PropertyID) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, getPropertySQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) error {
	_, err := r.db.ExecContext(ctx, upsertPropertySQL, p.ID, p.Name, p.Location, p.Price, p.ImageURL)
	return err
}

func (r *Repo) AppendBooking(ctx context.Context, b domain.BookingRecord) error {
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.UserID,
		b.Property.ID,
		b.Property.Name,
		b.Property.Location,
		b.Property.Price,
		b.Property.ImageURL,
		b.CreatedAt.UTC(),
	)
	return mapDup(err)
}

func (r *Repo) ListBookings(ctx context.Context, userID string) ([]domain.BookingRecord, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookingRecord
	for rows.Next() {
		var b domain.BookingRecord
		if err := rows.Scan(
			&b.ID, &b.UserID,
			&b.Property.ID, &b.Property.Name, &b.Property.Location, &b.Property.Price, &b.Property.ImageURL,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC())
	return mapDup(err)
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, userByEmailSQL, email)
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findUser(ctx, userByIDSQL, id)
}

func (r *Repo) findUser(ctx context.Context, q string, arg string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func mapDup(err error) error {
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, me.Message)
	}
	return err
}
