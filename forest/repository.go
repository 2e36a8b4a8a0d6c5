// Copyright 2025 The CafeForest Authors
// SPDX-License-Identifier: Apache-2.0

package forest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cafeforest/cafeforest/forest/utils"
	"github.com/cafeforest/cafeforest/spatial"
	"github.com/uber/h3-go/v4"
)

// ShopRepository handles persistence of coffee shops.
type ShopRepository interface {
	ShopSource

	// CreateSchema creates the shops table
	CreateSchema() error

	// BulkInsertShops inserts shops in a single transaction
	BulkInsertShops(shops []*Shop) error

	// SearchShops returns shops whose folded name contains the folded query
	SearchShops(query string, limit, offset int) ([]*Shop, error)

	// ListShopsInCell returns the shops inside an H3 cell of resolution 7 to 9
	ListShopsInCell(cell h3.Cell) ([]*Shop, error)

	// CountShops returns the total number of shops
	CountShops() (int, error)

	// ReplaceShops swaps the whole table content for shops in a single
	// transaction. onSaved, if not nil, is called with the number of shops
	// written so far.
	ReplaceShops(shops []*Shop, onSaved func(n int)) error

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlShopRepository struct {
	db *sql.DB
}

// NewShopRepository creates a new shop repository.
func NewShopRepository(db *sql.DB) ShopRepository {
	return &sqlShopRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlShopRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlShopRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS shops (
			id BIGINT PRIMARY KEY,
			name VARCHAR NOT NULL,
			name_folded VARCHAR NOT NULL,
			address VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			h3_res7 BIGINT,
			h3_res8 BIGINT,
			h3_res9 BIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (r *sqlShopRepository) BulkInsertShops(shops []*Shop) error {
	return r.writeShops(false, shops, nil)
}

func (r *sqlShopRepository) ReplaceShops(shops []*Shop, onSaved func(n int)) error {
	return r.writeShops(true, shops, onSaved)
}

// writeShops inserts shops in one transaction, deleting the existing rows
// first when replace is set. Nothing changes if any shop fails.
func (r *sqlShopRepository) writeShops(replace bool, shops []*Shop, onSaved func(n int)) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if replace {
		if _, err = tx.Exec(`DELETE FROM shops`); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return fmt.Errorf("clearing shops: %w", err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO shops(
			id,
			name,
			name_folded,
			address,
			lat,
			lng,
			h3_res7,
			h3_res8,
			h3_res9
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for i, s := range shops {
		if err = insertShop(stmt, s); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr // Prioritize the rollback error
			}

			return err
		}

		if onSaved != nil {
			onSaved(i + 1)
		}
	}

	return tx.Commit()
}

func insertShop(stmt *sql.Stmt, s *Shop) error {
	if s.Point == nil {
		return fmt.Errorf("shop %q: point can't be null", s.Name)
	}

	if s.ID == 0 {
		return fmt.Errorf("shop %q: id can't be zero", s.Name)
	}

	if err := s.computeH3(); err != nil {
		return err
	}

	_, err := stmt.Exec(
		s.ID,
		s.Name,
		utils.LowerASCIIFolding(s.Name),
		s.Address,
		s.Point.Lat,
		s.Point.Lng,
		s.H3Res7,
		s.H3Res8,
		s.H3Res9,
	)
	if err != nil {
		return fmt.Errorf("inserting shop %d: %w", s.ID, err)
	}

	return nil
}

const selectShops = `
	SELECT id, name, address, lat, lng, h3_res7, h3_res8, h3_res9
	FROM shops
`

func (r *sqlShopRepository) queryShops(ctx context.Context, query string, args ...any) ([]*Shop, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := make([]*Shop, 0)

	for rows.Next() {
		s := &Shop{Point: &spatial.Point{}}

		var h3Res7, h3Res8, h3Res9 sql.NullInt64

		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Address,
			&s.Point.Lat,
			&s.Point.Lng,
			&h3Res7,
			&h3Res8,
			&h3Res9,
		); err != nil {
			return nil, err
		}

		s.H3Res7 = h3Res7.Int64
		s.H3Res8 = h3Res8.Int64
		s.H3Res9 = h3Res9.Int64

		shops = append(shops, s)
	}

	return shops, rows.Err()
}

// ListShops returns every shop ordered by id, which is also the seed file order.
func (r *sqlShopRepository) ListShops(ctx context.Context) ([]*Shop, error) {
	shops, err := r.queryShops(ctx, selectShops+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing shops: %w", err)
	}

	return shops, nil
}

func (r *sqlShopRepository) SearchShops(query string, limit, offset int) ([]*Shop, error) {
	q := selectShops + ` WHERE name_folded LIKE ? ESCAPE '\' ORDER BY id`
	args := []any{"%" + escapeLike(utils.LowerASCIIFolding(query)) + "%"}

	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`

		args = append(args, limit, offset)
	}

	shops, err := r.queryShops(context.Background(), q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching shops: %w", err)
	}

	return shops, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *sqlShopRepository) ListShopsInCell(cell h3.Cell) ([]*Shop, error) {
	var column string

	switch res := cell.Resolution(); res {
	case 7:
		column = "h3_res7"
	case 8:
		column = "h3_res8"
	case 9:
		column = "h3_res9"
	default:
		return nil, fmt.Errorf("unsupported h3 resolution %d, expected %d to %d", res, minH3Res, maxH3Res)
	}

	shops, err := r.queryShops(context.Background(), selectShops+` WHERE `+column+` = ? ORDER BY id`, int64(cell))
	if err != nil {
		return nil, fmt.Errorf("listing shops in cell %s: %w", cell, err)
	}

	return shops, nil
}

func (r *sqlShopRepository) CountShops() (int, error) {
	var count int

	err := r.db.QueryRow(`SELECT count(*) FROM shops`).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	return count, err
}
