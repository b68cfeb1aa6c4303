package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "countries.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCountriesCSV(t *testing.T) {
	path := writeTempCSV(t, "name,code\nIndia,IN\nJapan,JP\n\"Korea, Republic of\",KR\n")

	got, err := LoadCountriesCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"India", "Japan", "Korea, Republic of"}, got)
}

func TestReadCountries_NameColumnAnywhere(t *testing.T) {
	got, err := ReadCountries(strings.NewReader("code,Name\nIN,India\nFR,France\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"India", "France"}, got)
}

func TestReadCountries_ByteOrderMark(t *testing.T) {
	got, err := ReadCountries(strings.NewReader("\ufeffname,code\nPeru,PE\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Peru"}, got)
}

func TestReadCountries_SkipsBlankNames(t *testing.T) {
	got, err := ReadCountries(strings.NewReader("name,code\n,XX\nChile,CL\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Chile"}, got)
}

func TestReadCountries_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty file", "", ErrNoCountries},
		{"header only", "name,code\n", ErrNoCountries},
		{"missing name column", "country,code\nIndia,IN\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCountries(strings.NewReader(tt.content))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadCountriesCSV_MissingFile(t *testing.T) {
	_, err := LoadCountriesCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// fakeRows is a minimal pgx.Rows over a slice of names.
type fakeRows struct {
	names  []string
	idx    int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return []pgconn.FieldDescription{{Name: "name"}} }
func (r *fakeRows) RawValues() [][]byte                          { return [][]byte{[]byte(r.names[r.idx-1])} }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.idx >= len(r.names) {
		r.closed = true
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) != 1 {
		return errors.New("expected one destination")
	}
	p, ok := dest[0].(*string)
	if !ok {
		return errors.New("expected *string destination")
	}
	*p = r.names[r.idx-1]
	return nil
}

func (r *fakeRows) Values() ([]any, error) { return []any{r.names[r.idx-1]}, nil }

type fakeQuerier struct {
	names []string
	err   error
	sql   string
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.sql = sql
	if q.err != nil {
		return nil, q.err
	}
	return &fakeRows{names: q.names}, nil
}

func TestLoadCountriesDB(t *testing.T) {
	q := &fakeQuerier{names: []string{"Brazil", "Canada"}}

	got, err := LoadCountriesDB(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brazil", "Canada"}, got)
	assert.Equal(t, listCountriesSQL, q.sql)
}

func TestLoadCountriesDB_Empty(t *testing.T) {
	_, err := LoadCountriesDB(context.Background(), &fakeQuerier{})
	assert.ErrorIs(t, err, ErrNoCountries)
}

func TestLoadCountriesDB_QueryError(t *testing.T) {
	boom := errors.New("relation \"countries\" does not exist")
	_, err := LoadCountriesDB(context.Background(), &fakeQuerier{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestLoad_PrefersDatabase(t *testing.T) {
	q := &fakeQuerier{names: []string{"Chile", "Peru"}}

	c, err := Load(context.Background(), "does-not-exist.csv", q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chile", "Peru"}, c.Countries())
}

func TestLoad_FallsBackToCSV(t *testing.T) {
	c, err := Load(context.Background(), "../../data/countries.csv", nil)
	require.NoError(t, err)
	assert.Contains(t, c.Countries(), "India")
}
