package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	prune := flag.Int("keep-invoices", 0, "when > 0, delete all but the newest N invoices after seeding")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedInventory(db)
	seedCustomers(db)

	if *prune > 0 {
		pruneInvoices(db, *prune)
	}

	log.Println("Seeding completed successfully!")
}

func seedInventory(db *sql.DB) {
	items := []struct {
		Name       string
		Barcode    string
		UnitPrice  string
		TaxPercent string
		StockQty   int
	}{
		{"Sugar 1kg", "8901000000011", "45.00", "5", 40},
		{"Rice 5kg", "8901000000028", "320.00", "5", 25},
		{"Toor Dal 1kg", "8901000000035", "145.00", "5", 30},
		{"Sunflower Oil 1L", "8901000000042", "130.00", "5", 20},
		{"Wheat Flour 5kg", "8901000000059", "210.00", "5", 18},
		{"Tea Powder 250g", "8901000000066", "95.00", "5", 35},
		{"Salt 1kg", "8901000000073", "22.00", "0", 50},
		{"Bath Soap", "8901000000080", "38.00", "18", 60},
		{"Detergent 1kg", "8901000000097", "110.00", "18", 24},
		{"Toothpaste 100g", "8901000000103", "55.00", "18", 28},
		{"Biscuits 200g", "8901000000110", "30.00", "18", 45},
		{"Milk 500ml", "8901000000127", "27.00", "0", 15},
	}

	fmt.Println("Seeding Inventory...")
	for _, it := range items {
		_, err := db.Exec(`
			INSERT INTO inventory (name, barcode, unit_price, tax_percent, stock_qty)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (barcode) DO UPDATE
			SET name = EXCLUDED.name,
			    unit_price = EXCLUDED.unit_price,
			    tax_percent = EXCLUDED.tax_percent,
			    updated_at = now();
		`, it.Name, it.Barcode, it.UnitPrice, it.TaxPercent, it.StockQty)
		if err != nil {
			log.Printf("  failed to seed item %q: %v", it.Name, err)
		}
	}
}

func seedCustomers(db *sql.DB) {
	customers := []struct {
		Name  string
		Phone string
	}{
		{"Ravi Kumar", "+919000000001"},
		{"Lakshmi Devi", "+919000000002"},
		{"Suresh Babu", "+919000000003"},
		{"Anitha R", "+919000000004"},
		{"Manjunath S", "+919000000005"},
	}

	fmt.Println("Seeding Customers...")
	for _, c := range customers {
		_, err := db.Exec(`
			INSERT INTO customers (name, phone)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM customers WHERE phone = $2);
		`, c.Name, c.Phone)
		if err != nil {
			log.Printf("  failed to seed customer %q: %v", c.Name, err)
		}
	}
}

func pruneInvoices(db *sql.DB, keep int) {
	fmt.Printf("Pruning invoice history to newest %d entries...\n", keep)
	res, err := db.Exec(`
		DELETE FROM invoices
		WHERE id NOT IN (
			SELECT id FROM invoices ORDER BY created_at DESC LIMIT $1
		);
	`, keep)
	if err != nil {
		log.Printf("  failed to prune invoices: %v", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Printf("  removed %d old invoices", n)
	}
}
