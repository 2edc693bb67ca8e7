package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KatlegoSeiphemo/odysseyfinds/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// DefaultStock applies to rows with an empty stock column; it matches the
// products.stock column default.
const DefaultStock = 10

// CSVImporter reads catalogue CSV files and inserts/updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	line      int
	ID        string
	Name      string
	Desc      string
	Price     string
	Category  string
	ImageURL  string
	Brand     string
	Condition string
	Sizes     []string
	Stock     string
}

// Run parses CSV rows and upserts one product per named row. A row without
// a name continues the previous product and only contributes sizes.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("read headers: missing name column")
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.Name != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current != nil && len(row.Sizes) > 0 {
			current.Sizes = append(current.Sizes, row.Sizes...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p, err := row.product()
	if err != nil {
		return fmt.Errorf("line %d (%q): %w", row.line, row.Name, err)
	}
	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	return nil
}

func (r *csvRow) product() (domain.Product, error) {
	if r.Category == "" || r.Condition == "" {
		return domain.Product{}, fmt.Errorf("missing category or condition: %w", domain.ErrInvalidInput)
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("price %q: %w", r.Price, domain.ErrInvalidInput)
	}
	if price.IsNegative() || price.Exponent() < -2 {
		return domain.Product{}, fmt.Errorf("price %q must be non-negative with at most two decimals: %w", r.Price, domain.ErrInvalidInput)
	}
	stock := DefaultStock
	if r.Stock != "" {
		stock, err = strconv.Atoi(r.Stock)
		if err != nil || stock < 0 {
			return domain.Product{}, fmt.Errorf("stock %q: %w", r.Stock, domain.ErrInvalidInput)
		}
	}
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Desc,
		Price:       price.InexactFloat64(),
		Category:    strings.ToLower(r.Category),
		ImageURL:    r.ImageURL,
		Brand:       r.Brand,
		Condition:   strings.ToLower(r.Condition),
		Sizes:       r.Sizes,
		Stock:       stock,
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:        pick(record, index, "id"),
		Name:      pick(record, index, "name"),
		Desc:      pick(record, index, "description"),
		Price:     pick(record, index, "price"),
		Category:  pick(record, index, "category"),
		ImageURL:  pick(record, index, "image_url"),
		Brand:     pick(record, index, "brand"),
		Condition: pick(record, index, "condition"),
		Sizes:     splitSizes(pick(record, index, "sizes")),
		Stock:     pick(record, index, "stock"),
	}
	if row.Name == "" && len(row.Sizes) == 0 {
		return nil
	}
	return row
}

func splitSizes(raw string) []string {
	if raw == "" {
		return nil
	}
	var sizes []string
	for _, s := range strings.Split(raw, ";") {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
