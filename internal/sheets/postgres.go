package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres emulates a spreadsheet on two tables so the CRM can run without
// Google credentials. Every row is stored whole as a text[] of cells.
//
// Rows are never deleted: Clear blanks cells, matching the sheet behaviour
// the repositories rely on.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSheets creates the backing tables and the named sheets if they do
// not exist yet.
func (p *Postgres) EnsureSheets(ctx context.Context, names ...string) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sheet_tabs (
			name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS sheet_rows (
			sheet   TEXT NOT NULL REFERENCES sheet_tabs(name),
			row_num INT  NOT NULL,
			cells   TEXT[] NOT NULL DEFAULT '{}',
			PRIMARY KEY (sheet, row_num)
		)`,
	}
	for _, stmt := range schema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create sheet tables: %w", err)
		}
	}
	for _, name := range names {
		_, err := p.pool.Exec(ctx,
			`INSERT INTO sheet_tabs (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, rng string) ([][]string, error) {
	r, err := ParseA1(rng)
	if err != nil {
		return nil, err
	}
	if err := p.checkSheet(ctx, p.pool, r.Sheet); err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT row_num, cells
		FROM sheet_rows
		WHERE sheet = $1 AND row_num >= $2 AND ($3 = 0 OR row_num <= $3)
		ORDER BY row_num`, r.Sheet, r.StartRow, r.EndRow)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rng, err)
	}
	defer rows.Close()

	sparse := make(map[int][]string)
	last := 0
	for rows.Next() {
		var n int
		var cells []string
		if err := rows.Scan(&n, &cells); err != nil {
			return nil, fmt.Errorf("scan %s: %w", rng, err)
		}
		sparse[n] = cells
		last = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", rng, err)
	}
	return collect(sparse, r, last), nil
}

func (p *Postgres) Update(ctx context.Context, rng string, values [][]string) error {
	r, err := ParseA1(rng)
	if err != nil {
		return err
	}
	return p.inTx(ctx, r.Sheet, func(tx pgx.Tx) error {
		return p.writeRows(ctx, tx, r.Sheet, r.StartRow, r.StartCol, values)
	})
}

func (p *Postgres) Append(ctx context.Context, rng string, values [][]string) error {
	r, err := ParseA1(rng)
	if err != nil {
		return err
	}
	return p.inTx(ctx, r.Sheet, func(tx pgx.Tx) error {
		var last int
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(row_num), 0)
			FROM sheet_rows
			WHERE sheet = $1 AND array_to_string(cells, '') <> ''`, r.Sheet).Scan(&last)
		if err != nil {
			return fmt.Errorf("find last row of %s: %w", r.Sheet, err)
		}
		return p.writeRows(ctx, tx, r.Sheet, last+1, r.StartCol, values)
	})
}

func (p *Postgres) Clear(ctx context.Context, rng string) error {
	r, err := ParseA1(rng)
	if err != nil {
		return err
	}
	return p.inTx(ctx, r.Sheet, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT row_num, cells
			FROM sheet_rows
			WHERE sheet = $1 AND row_num >= $2 AND ($3 = 0 OR row_num <= $3)`,
			r.Sheet, r.StartRow, r.EndRow)
		if err != nil {
			return fmt.Errorf("select %s: %w", rng, err)
		}
		cleared := make(map[int][]string)
		for rows.Next() {
			var n int
			var cells []string
			if err := rows.Scan(&n, &cells); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: %w", rng, err)
			}
			cleared[n] = splice(cells, r.StartCol, blankValues(cells, r))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate %s: %w", rng, err)
		}

		for n, cells := range cleared {
			if _, err := tx.Exec(ctx,
				`UPDATE sheet_rows SET cells = $3 WHERE sheet = $1 AND row_num = $2`,
				r.Sheet, n, cells); err != nil {
				return fmt.Errorf("clear row %d of %s: %w", n, r.Sheet, err)
			}
		}
		return nil
	})
}

// writeRows merges values into consecutive rows starting at startRow.
func (p *Postgres) writeRows(ctx context.Context, tx pgx.Tx, sheet string, startRow, startCol int, values [][]string) error {
	for i, v := range values {
		n := startRow + i
		var existing []string
		err := tx.QueryRow(ctx,
			`SELECT cells FROM sheet_rows WHERE sheet = $1 AND row_num = $2 FOR UPDATE`,
			sheet, n).Scan(&existing)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read row %d of %s: %w", n, sheet, err)
		}
		cells := splice(existing, startCol, v)
		_, err = tx.Exec(ctx, `
			INSERT INTO sheet_rows (sheet, row_num, cells)
			VALUES ($1, $2, $3)
			ON CONFLICT (sheet, row_num) DO UPDATE SET cells = EXCLUDED.cells`,
			sheet, n, cells)
		if err != nil {
			return fmt.Errorf("write row %d of %s: %w", n, sheet, err)
		}
	}
	return nil
}

// inTx runs fn in a transaction holding a row lock on the sheet tab, which
// serializes writers of the same sheet.
func (p *Postgres) inTx(ctx context.Context, sheet string, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var name string
	err = tx.QueryRow(ctx, `SELECT name FROM sheet_tabs WHERE name = $1 FOR UPDATE`, sheet).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", sheet, ErrSheetNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock sheet %s: %w", sheet, err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (p *Postgres) checkSheet(ctx context.Context, q queryRower, sheet string) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sheet_tabs WHERE name = $1)`, sheet).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check sheet %s: %w", sheet, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", sheet, ErrSheetNotFound)
	}
	return nil
}
