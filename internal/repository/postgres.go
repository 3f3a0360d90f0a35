package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tably/pos-backend/internal/models"
)

// Table order documents are stored whole as JSONB, mirroring the document
// shape the UI consumes; products and stock use plain columns with a JSONB
// recipe.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	branch_code TEXT NOT NULL,
	name TEXT NOT NULL,
	price NUMERIC(12,2) NOT NULL,
	subcategory TEXT NOT NULL,
	ingredients JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_branch ON products (branch_code);

CREATE TABLE IF NOT EXISTS table_orders (
	branch_code TEXT NOT NULL,
	table_number TEXT NOT NULL,
	doc JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (branch_code, table_number)
);

CREATE TABLE IF NOT EXISTS stock_items (
	id TEXT PRIMARY KEY,
	branch_code TEXT NOT NULL,
	ingredient_name TEXT NOT NULL,
	quantity NUMERIC(14,3) NOT NULL,
	unit TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_stock_items_branch ON stock_items (branch_code);
`

// ConnectPostgres opens a pgx pool, verifies the connection, and applies
// the schema idempotently.
func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = 25
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return pool, nil
}

// PostgresProductRepository implements ProductRepository on pgx.
type PostgresProductRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepository(pool *pgxpool.Pool) *PostgresProductRepository {
	return &PostgresProductRepository{pool: pool}
}

func (r *PostgresProductRepository) GetAll(ctx context.Context, branch string) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, branch_code, name, price::text, subcategory, ingredients
		 FROM products WHERE branch_code = $1 ORDER BY created_at`, branch)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, branch, id string) (*models.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, branch_code, name, price::text, subcategory, ingredients
		 FROM products WHERE branch_code = $1 AND id = $2`, branch, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *PostgresProductRepository) Create(ctx context.Context, product models.Product) error {
	recipe, err := json.Marshal(product.Ingredients)
	if err != nil {
		return fmt.Errorf("marshal recipe: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO products (id, branch_code, name, price, subcategory, ingredients)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		product.ID, product.BranchCode, product.Name, product.Price.String(), product.Subcategory, recipe)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var (
		p        models.Product
		priceStr string
		recipe   []byte
	)
	if err := row.Scan(&p.ID, &p.BranchCode, &p.Name, &priceStr, &p.Subcategory, &recipe); err != nil {
		return models.Product{}, err
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return models.Product{}, fmt.Errorf("parse price: %w", err)
	}
	p.Price = price
	if err := json.Unmarshal(recipe, &p.Ingredients); err != nil {
		return models.Product{}, fmt.Errorf("unmarshal recipe: %w", err)
	}
	return p, nil
}

// PostgresTableRepository implements TableRepository on pgx, storing each
// table's order document as a JSONB value.
type PostgresTableRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTableRepository(pool *pgxpool.Pool) *PostgresTableRepository {
	return &PostgresTableRepository{pool: pool}
}

func (r *PostgresTableRepository) List(ctx context.Context, branch string) ([]models.TableOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT doc FROM table_orders WHERE branch_code = $1 ORDER BY created_at`, branch)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []models.TableOrder
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var table models.TableOrder
		if err := json.Unmarshal(doc, &table); err != nil {
			return nil, fmt.Errorf("unmarshal table document: %w", err)
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

func (r *PostgresTableRepository) GetTable(ctx context.Context, branch, tableNumber string) (models.TableOrder, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx,
		`SELECT doc FROM table_orders WHERE branch_code = $1 AND table_number = $2`,
		branch, tableNumber).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TableOrder{}, ErrTableNotFound
		}
		return models.TableOrder{}, fmt.Errorf("query table: %w", err)
	}

	var table models.TableOrder
	if err := json.Unmarshal(doc, &table); err != nil {
		return models.TableOrder{}, fmt.Errorf("unmarshal table document: %w", err)
	}
	return table, nil
}

func (r *PostgresTableRepository) SaveTable(ctx context.Context, branch string, table models.TableOrder) error {
	doc, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("marshal table document: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO table_orders (branch_code, table_number, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (branch_code, table_number)
		 DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		branch, table.TableNumber, doc)
	if err != nil {
		return fmt.Errorf("upsert table: %w", err)
	}
	return nil
}

func (r *PostgresTableRepository) CreateTable(ctx context.Context, branch, tableNumber string) error {
	doc, err := json.Marshal(models.NewTableOrder(tableNumber))
	if err != nil {
		return fmt.Errorf("marshal table document: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO table_orders (branch_code, table_number, doc)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (branch_code, table_number) DO NOTHING`,
		branch, tableNumber, doc)
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTableExists
	}
	return nil
}

// PostgresStockRepository implements StockRepository on pgx.
type PostgresStockRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresStockRepository(pool *pgxpool.Pool) *PostgresStockRepository {
	return &PostgresStockRepository{pool: pool}
}

func (r *PostgresStockRepository) GetAll(ctx context.Context, branch string) ([]models.StockItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, branch_code, ingredient_name, quantity::text, unit
		 FROM stock_items WHERE branch_code = $1 ORDER BY created_at`, branch)
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	var items []models.StockItem
	for rows.Next() {
		var (
			item   models.StockItem
			qtyStr string
		)
		if err := rows.Scan(&item.ID, &item.BranchCode, &item.IngredientName, &qtyStr, &item.Unit); err != nil {
			return nil, err
		}
		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("parse quantity: %w", err)
		}
		item.Quantity = qty
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresStockRepository) Create(ctx context.Context, item models.StockItem) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO stock_items (id, branch_code, ingredient_name, quantity, unit)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.BranchCode, item.IngredientName, item.Quantity.String(), item.Unit)
	if err != nil {
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}
