package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/entity/identity"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) ListUsers(ctx context.Context, username string) ([]identity.Record, error) {
	query := psql.Select("id", "username", "name", "password", "created_at").
		From("users")
	if username != "" {
		query = query.Where(sq.Eq{"username": username})
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users := make([]identity.Record, 0)
	for rows.Next() {
		var u identity.Record
		var id int64
		err = rows.Scan(&id, &u.Username, &u.Name, &u.Password, &u.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "list users")
		}
		u.ID = strconv.FormatInt(id, 10)
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return users, nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, rec identity.Record) (identity.Record, error) {
	query := psql.Insert("users").
		Columns("username", "name", "password", "created_at").
		Values(rec.Username, rec.Name, rec.Password, rec.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&id)
	if err != nil {
		return identity.Record{}, errors.Wrap(err, "create user")
	}
	rec.ID = strconv.FormatInt(id, 10)
	return rec, nil
}

func (s *PostgresStorage) ListEntries(ctx context.Context) ([]entry.Record, error) {
	query := psql.Select("id", "title", "amount", "type", "category", "notes", "username", "created_at").
		From("expenses").
		OrderBy("id")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list entries")
	}
	defer rows.Close()

	entries := make([]entry.Record, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list entries")
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list entries")
	}
	return entries, nil
}

func (s *PostgresStorage) CreateEntry(ctx context.Context, rec entry.Record) (entry.Record, error) {
	query := psql.Insert("expenses").
		Columns("title", "amount", "type", "category", "notes", "username", "created_at").
		Values(rec.Title, rec.Amount, string(rec.Type), string(rec.Category), rec.Notes, rec.Username, rec.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&id)
	if err != nil {
		return entry.Record{}, errors.Wrap(err, "create entry")
	}
	rec.ID = strconv.FormatInt(id, 10)
	return rec, nil
}

func (s *PostgresStorage) UpdateEntry(ctx context.Context, rec entry.Record) (entry.Record, error) {
	id, err := strconv.ParseInt(rec.ID, 10, 64)
	if err != nil {
		return entry.Record{}, ErrNotFound
	}

	query := psql.Update("expenses").
		Set("title", rec.Title).
		Set("amount", rec.Amount).
		Set("type", string(rec.Type)).
		Set("category", string(rec.Category)).
		Set("notes", rec.Notes).
		Where(sq.Eq{"id": id})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return entry.Record{}, errors.Wrap(err, "update entry")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return entry.Record{}, errors.Wrap(err, "update entry")
	}
	if affected == 0 {
		return entry.Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *PostgresStorage) DeleteEntry(ctx context.Context, id string) error {
	numID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}

	query := psql.Delete("expenses").Where(sq.Eq{"id": numID})

	res, err := query.RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "delete entry")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete entry")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntry(rows *sql.Rows) (entry.Record, error) {
	var e entry.Record
	var id int64
	var typ, cat string
	var created time.Time
	err := rows.Scan(&id, &e.Title, &e.Amount, &typ, &cat, &e.Notes, &e.Username, &created)
	if err != nil {
		return entry.Record{}, err
	}
	e.ID = strconv.FormatInt(id, 10)
	e.Type = entry.Type(typ)
	e.Category = entry.NormalizeCategory(cat)
	e.CreatedAt = created
	return e, nil
}
