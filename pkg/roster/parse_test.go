package roster_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dmitrymomot/bulkmail/pkg/roster"
)

func workbook(t *testing.T, sheets map[string][][]any, order ...string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cellRef, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse_Workbook(t *testing.T) {
	t.Parallel()

	buf := workbook(t, map[string][][]any{
		"Recipients": {
			{"Email", "Company", "NAME"},
			{"ann@example.com", "Acme", "Ann"},
			{"", "", ""},
			{"bob@example.com", "Globex", "Bob"},
			{"cid@example.com"},
		},
		"Ignored": {
			{"name", "email"},
			{"Zed", "zed@example.com"},
		},
	}, "Recipients", "Ignored")

	rows, err := roster.Parse(buf, "list.xlsx")
	require.NoError(t, err)
	require.Equal(t, []roster.Row{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "", Email: "cid@example.com"},
	}, rows)
}

func TestParse_CSV(t *testing.T) {
	t.Parallel()

	input := "\ufeffname, email ,notes\nAnn,ann@example.com,vip\n\nBob,bob@example.com\n"

	rows, err := roster.Parse(strings.NewReader(input), "LIST.CSV")
	require.NoError(t, err)
	require.Equal(t, []roster.Row{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
	}, rows)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		filename string
		wantErr  error
	}{
		{name: "legacy xls", input: "x", filename: "list.xls", wantErr: roster.ErrUnsupportedFormat},
		{name: "no extension", input: "x", filename: "list", wantErr: roster.ErrUnsupportedFormat},
		{name: "missing email column", input: "name,phone\nAnn,123\n", filename: "a.csv", wantErr: roster.ErrMissingColumn},
		{name: "empty csv", input: "", filename: "a.csv", wantErr: roster.ErrMissingColumn},
		{name: "broken csv quoting", input: "name,email\n\"Ann,ann@example.com\n", filename: "a.csv", wantErr: roster.ErrInvalidFile},
		{name: "corrupt workbook", input: "not a zip", filename: "a.xlsx", wantErr: roster.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rows, err := roster.Parse(strings.NewReader(tt.input), tt.filename)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, rows)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	t.Parallel()

	rows, err := roster.Parse(strings.NewReader("name,email\n"), "a.csv")
	require.NoError(t, err)
	require.Empty(t, rows)
}
