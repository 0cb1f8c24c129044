package pg

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storer writes records of local and sync content types to their tables.
type Storer struct {
	db     *pgxpool.Pool
	prefix string
	now    func() time.Time
}

func NewStorer(pool *ConnectionPool) *Storer {
	return &Storer{db: pool.GetConn(), prefix: pool.TablePrefix(), now: time.Now}
}

func (s *Storer) Insert(ctx context.Context, ct *schema.ContentType, values storage.Row) (string, error) {
	now := s.now()
	row := make(storage.Row, len(values)+2)
	for k, v := range values {
		if k == "id" {
			continue
		}
		row[k] = v
	}
	for _, col := range []string{"datecreated", "datechanged"} {
		if row[col] == nil {
			row[col] = now
		}
	}

	cols, args, err := s.columnArgs(ct, row, now)
	if err != nil {
		return "", err
	}

	placeholders := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	cmd := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		ident(ct.TableName(s.prefix)), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := s.db.QueryRow(ctx, cmd, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to insert %s: %w", ct.Slug, err)
	}

	return strconv.FormatInt(id, 10), nil
}

func (s *Storer) Update(ctx context.Context, ct *schema.ContentType, id string, values storage.Row) error {
	now := s.now()
	row := make(storage.Row, len(values)+1)
	for k, v := range values {
		if k == "id" {
			continue
		}
		row[k] = v
	}
	row["datechanged"] = now

	cols, args, err := s.columnArgs(ct, row, now)
	if err != nil {
		return err
	}
	key, err := columnValue(ct, "id", id, now)
	if err != nil {
		return err
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = ident(c) + " = $" + strconv.Itoa(i+1)
	}
	args = append(args, key)

	cmd := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		ident(ct.TableName(s.prefix)), strings.Join(sets, ", "), ident("id"), len(args))

	tag, err := s.db.Exec(ctx, cmd, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", ct.Slug, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	}
	return nil
}

func (s *Storer) Delete(ctx context.Context, ct *schema.ContentType, id string) error {
	key, err := columnValue(ct, "id", id, s.now())
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ident(ct.TableName(s.prefix)), ident("id")), key)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", ct.Slug, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	}

	_, err = s.db.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE contenttype = $1 AND content_id = $2", ident(TaxonomyTable(s.prefix))),
		ct.Slug, key)
	if err != nil {
		return fmt.Errorf("failed to delete taxonomies of %s %s: %w", ct.Slug, id, err)
	}
	return nil
}

func (s *Storer) Find(ctx context.Context, ct *schema.ContentType, id string) (storage.Row, error) {
	key, err := columnValue(ct, "id", id, s.now())
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", ident(ct.TableName(s.prefix)), ident("id")), key)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s %s: %w", ct.Slug, id, err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s %s: %w", ct.Slug, id, err)
	}
	return row, nil
}

// SetTaxonomies replaces the taxonomy assignments of a record.
func (s *Storer) SetTaxonomies(ctx context.Context, ct *schema.ContentType, id string, terms []storage.TaxonomyTerm) error {
	key, err := columnValue(ct, "id", id, s.now())
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	table := TaxonomyTable(s.prefix)
	_, err = tx.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE contenttype = $1 AND content_id = $2", ident(table)),
		ct.Slug, key)
	if err != nil {
		return fmt.Errorf("failed to clear taxonomies: %w", err)
	}

	rows := make([][]interface{}, len(terms))
	for i, t := range terms {
		rows[i] = []interface{}{key, ct.Slug, t.Taxonomy, t.Slug, t.Name, t.SortOrder}
	}
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{table},
		[]string{"content_id", "contenttype", "taxonomytype", "slug", "name", "sortorder"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to store taxonomies: %w", err)
	}

	return tx.Commit(ctx)
}

// columnArgs returns the known columns of row in a stable order together
// with their converted values.
func (s *Storer) columnArgs(ct *schema.ContentType, row storage.Row, now time.Time) ([]string, []any, error) {
	cols := make([]string, 0, len(row))
	for k := range row {
		if _, ok := ct.ColumnType(k); ok {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	for i, c := range cols {
		v, err := columnValue(ct, c, row[c], now)
		if err != nil {
			return nil, nil, err
		}
		args[i] = v
	}
	return cols, args, nil
}

var _ storage.Storer = (*Storer)(nil)
