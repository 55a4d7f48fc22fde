package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"toko/internal/models"
	"toko/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CSV columns understood by LoadCSV. ProductID and ProductName are required.
const (
	colProductID    = "ProductID"
	colProductName  = "ProductName"
	colGender       = "Gender"
	colPrice        = "Price (INR)"
	colDescription  = "Description"
	colCategory     = "Category"
	colPrimaryColor = "PrimaryColor"
	colColors       = "Colors"
	colSizes        = "Sizes"
	colImage        = "Image"

	listSeparator = "|"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// CatalogLoader bulk-loads the catalog. Every load is a no-op when the
// catalog already holds products.
type CatalogLoader struct {
	repo         repositories.ProductRepository
	storeTimeout time.Duration
	lower        cases.Caser
}

// NewCatalogLoader creates a new CatalogLoader.
func NewCatalogLoader(repo repositories.ProductRepository, storeTimeout time.Duration) *CatalogLoader {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &CatalogLoader{
		repo:         repo,
		storeTimeout: storeTimeout,
		lower:        cases.Lower(language.Und),
	}
}

// LoadSamples inserts the built-in sample catalog and returns how many
// products were inserted.
func (l *CatalogLoader) LoadSamples(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.storeTimeout)
	defer cancel()

	return l.loadIfEmpty(ctx, SampleProducts())
}

// LoadCSV reads a product catalog export and inserts every valid row in one
// batch. Rows without an ID or a name are skipped, as are repeated IDs and
// prices the catalog cannot store. The caller's context bounds the whole load.
func (l *CatalogLoader) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	// Early exit so a loaded catalog never pays for parsing; loadIfEmpty
	// repeats the check right before inserting.
	loaded, err := l.catalogLoaded(ctx)
	if err != nil || loaded {
		return 0, err
	}

	products, err := l.parseCSV(r)
	if err != nil {
		return 0, err
	}
	return l.loadIfEmpty(ctx, products)
}

func (l *CatalogLoader) catalogLoaded(ctx context.Context) (bool, error) {
	count, err := l.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		slog.Info("catalog already loaded, skipping", slog.Int64("products", count))
		return true, nil
	}
	return false, nil
}

func (l *CatalogLoader) loadIfEmpty(ctx context.Context, products []models.Product) (int, error) {
	loaded, err := l.catalogLoaded(ctx)
	if err != nil || loaded {
		return 0, err
	}
	if len(products) == 0 {
		return 0, nil
	}

	if err := l.repo.CreateBatch(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to load products: %w", err)
	}
	slog.Info("catalog loaded", slog.Int("products", len(products)))
	return len(products), nil
}

func (l *CatalogLoader) parseCSV(r io.Reader) ([]models.Product, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{colProductID, colProductName} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var products []models.Product
	seen := make(map[string]struct{})
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		id := field(record, colProductID)
		name := field(record, colProductName)
		if id == "" || name == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			slog.Warn("skipping duplicate product id", slog.String("product_id", id), slog.Int("line", line))
			continue
		}
		seen[id] = struct{}{}

		price, ok := parseCSVPrice(field(record, colPrice))
		if !ok {
			slog.Warn("skipping product with out-of-range price",
				slog.String("product_id", id),
				slog.String("price", field(record, colPrice)),
				slog.Int("line", line))
			continue
		}

		colors := splitList(l.lower.String(field(record, colColors)))
		if primary := l.lower.String(field(record, colPrimaryColor)); primary != "" && !containsString(colors, primary) {
			colors = append([]string{primary}, colors...)
		}

		products = append(products, models.Product{
			ID:          id,
			Name:        name,
			Price:       price,
			Image:       field(record, colImage),
			Gender:      l.normalizeGender(field(record, colGender)),
			Category:    l.lower.String(field(record, colCategory)),
			Colors:      colors,
			Sizes:       splitList(field(record, colSizes)),
			Description: field(record, colDescription),
		})
	}
	return products, nil
}

func (l *CatalogLoader) normalizeGender(raw string) models.Gender {
	switch g := models.Gender(l.lower.String(raw)); g {
	case "boys", "girls":
		return models.GenderKids
	default:
		if g.Valid() {
			return g
		}
		return models.GenderUnisex
	}
}

// parseCSVPrice treats unparseable or negative prices as zero and reports
// false for prices too large or too precise to store.
func parseCSVPrice(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil || d.IsNegative() {
		return decimal.Zero, true
	}
	if !models.PriceWithinBounds(d) {
		return decimal.Zero, false
	}
	return d, true
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && !containsString(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
