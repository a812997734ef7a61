package sqlgen

import (
	"context"
	"database/sql"
	"fmt"
)

// seedDDL creates the demo sales tables.
var seedDDL = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		price REAL NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		product_id INTEGER NOT NULL REFERENCES products(id),
		customer TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		order_date TEXT NOT NULL
	)`,
}

// SeedDatabase creates and fills the demo sales database used by the sql
// command. Existing rows are cleared so the seed is repeatable.
func SeedDatabase(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range seedDDL {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, table := range []string{"orders", "products"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	products := []struct {
		id       int
		name     string
		category string
		price    float64
	}{
		{1, "笔记本电脑", "电子产品", 5999},
		{2, "无线鼠标", "电子产品", 99},
		{3, "机械键盘", "电子产品", 399},
		{4, "办公椅", "家具", 899},
		{5, "升降桌", "家具", 1599},
	}
	for _, p := range products {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO products (id, name, category, price) VALUES (?, ?, ?, ?)",
			p.id, p.name, p.category, p.price)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.name, err)
		}
	}

	orders := []struct {
		id        int
		productID int
		customer  string
		quantity  int
		date      string
	}{
		{1, 1, "张伟", 1, "2025-06-03"},
		{2, 2, "李娜", 2, "2025-06-05"},
		{3, 3, "张伟", 1, "2025-06-10"},
		{4, 1, "王芳", 1, "2025-07-01"},
		{5, 4, "刘洋", 2, "2025-07-08"},
		{6, 5, "李娜", 1, "2025-07-15"},
		{7, 2, "王芳", 3, "2025-07-21"},
	}
	for _, o := range orders {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO orders (id, product_id, customer, quantity, order_date) VALUES (?, ?, ?, ?, ?)",
			o.id, o.productID, o.customer, o.quantity, o.date)
		if err != nil {
			return fmt.Errorf("insert order %d: %w", o.id, err)
		}
	}

	return tx.Commit()
}
