package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrNoCountries is returned when a source yields no country names.
var ErrNoCountries = errors.New("country list is empty")

const nameColumn = "name"

// LoadCountriesCSV reads the country file at path. The file must have a header
// row with a "name" column; other columns are ignored.
func LoadCountriesCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening country list: %w", err)
	}
	defer f.Close()

	countries, err := ReadCountries(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("count", len(countries)).Msg("Loaded country list")
	return countries, nil
}

// ReadCountries parses CSV content from r and returns the name column.
func ReadCountries(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoCountries
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), nameColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("header has no %q column", nameColumn)
	}

	var countries []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if col >= len(record) {
			continue
		}
		name := strings.TrimSpace(record[col])
		if name == "" {
			continue
		}
		countries = append(countries, name)
	}

	if len(countries) == 0 {
		return nil, ErrNoCountries
	}
	return countries, nil
}

// Querier is the subset of pgxpool.Pool used to read countries.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const listCountriesSQL = `SELECT name FROM countries ORDER BY name`

// LoadCountriesDB reads the countries table.
func LoadCountriesDB(ctx context.Context, q Querier) ([]string, error) {
	rows, err := q.Query(ctx, listCountriesSQL)
	if err != nil {
		return nil, fmt.Errorf("querying countries: %w", err)
	}

	countries, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning countries: %w", err)
	}
	if len(countries) == 0 {
		return nil, ErrNoCountries
	}

	log.Info().Int("count", len(countries)).Msg("Loaded country list from database")
	return countries, nil
}

// Load builds a Catalog from the database when q is non-nil and from the CSV
// file at csvPath otherwise.
func Load(ctx context.Context, csvPath string, q Querier) (*Catalog, error) {
	var (
		countries []string
		err       error
	)
	if q != nil {
		countries, err = LoadCountriesDB(ctx, q)
	} else {
		countries, err = LoadCountriesCSV(csvPath)
	}
	if err != nil {
		return nil, err
	}
	return New(countries), nil
}
