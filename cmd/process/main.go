package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"invoicebooks/internal/assemble"
	"invoicebooks/internal/database"
	"invoicebooks/internal/export"
	"invoicebooks/internal/logger"
	"invoicebooks/internal/models"
	"invoicebooks/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: process <input-dir> [output-dir]")
		fmt.Println("Set DB_PATH to resolve clients from an existing database.")
		os.Exit(1)
	}

	inputDir := os.Args[1]
	outputDir := "./output"
	if len(os.Args) > 2 {
		outputDir = os.Args[2]
	}

	logger.Init()
	log := logger.Default()

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		fmt.Printf("Error reading input directory: %v\n", err)
		os.Exit(1)
	}

	files := make(map[string][]byte)
	var order []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(inputDir, entry.Name()))
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", entry.Name(), err)
			os.Exit(1)
		}
		files[entry.Name()] = content
		order = append(order, entry.Name())
	}
	sort.Strings(order)

	if len(order) == 0 {
		fmt.Printf("No CSV files found in %s\n", inputDir)
		os.Exit(1)
	}

	// Without a database the static fallback clients cover every business.
	dir := models.Directory{}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		db, err := database.Open(dbPath)
		if err != nil {
			fmt.Printf("Error opening database: %v\n", err)
			os.Exit(1)
		}
		dir, err = db.LoadDirectory()
		db.Close()
		if err != nil {
			fmt.Printf("Error loading client directory: %v\n", err)
			os.Exit(1)
		}
	}

	processor := pipeline.New(dir, log)
	batch := assemble.NewBatch()
	results := processor.ProcessBatch(batch, files, order)

	fmt.Println("Files:")
	fmt.Println("------")
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("  %-40s ERROR: %v\n", res.File, res.Err)
			continue
		}
		fmt.Printf("  %-40s %4d items\n", res.File, res.Items)
	}

	if batch.Len() == 0 {
		fmt.Println("\nNo billable items found.")
		os.Exit(1)
	}

	fmt.Println("\nInvoices by business:")
	fmt.Println("---------------------")
	for _, business := range batch.Businesses() {
		invoices := batch.Invoices(business)
		var subtotal, grand float64
		for _, inv := range invoices {
			subtotal += inv.Subtotal
			grand += inv.GrandTotal
		}
		fmt.Printf("  %-12s: %3d invoices, %4d items, subtotal $%10.2f, grand total $%10.2f\n",
			business.Display(), len(invoices), len(batch.Items(business)), subtotal, grand)
	}

	written, err := export.WriteGroupedCSV(outputDir, batch)
	if err != nil {
		fmt.Printf("Error writing CSV output: %v\n", err)
		os.Exit(1)
	}

	workbookPath := filepath.Join(outputDir, "invoices.xlsx")
	if err := export.WriteWorkbook(workbookPath, batch); err != nil {
		fmt.Printf("Error writing workbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nOutput:")
	fmt.Println("-------")
	for _, path := range written {
		fmt.Printf("  %s\n", path)
	}
	fmt.Printf("  %s\n", workbookPath)

	if failed > 0 {
		fmt.Printf("\n%d of %d files failed.\n", failed, len(order))
	}
}
