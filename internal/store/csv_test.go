package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

func TestWriteTableFormat(t *testing.T) {
	tbl := NewWideTable()
	tbl.Set("창연", "2026-03-02 09:00", 12.5)
	tbl.Set("창연", "2026-03-02 10:00", 12.9)
	tbl.Set("WoW 토큰", "2026-03-02 10:00", 312500)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, bom), "output must start with a UTF-8 BOM")
	want := "item_name,2026-03-02 09:00,2026-03-02 10:00\n" +
		"창연,12.5,12.9\n" +
		"WoW 토큰,,312500\n"
	assert.Equal(t, want, string(out[len(bom):]))
}

func TestReadTableRoundTrip(t *testing.T) {
	tbl := NewWideTable()
	tbl.Set("창연", "2026-03-02 09:00", 12.5)
	tbl.Set("더럽혀진 부싯깃 상자", "2026-03-02 10:00", 450.1234)
	tbl.AddRow("empty row")

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))

	got, err := ReadTable(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows(), got.Rows())
	assert.Equal(t, tbl.Columns(), got.Columns())
	assert.Equal(t, tbl.Len(), got.Len())

	v, ok := got.Get("더럽혀진 부싯깃 상자", "2026-03-02 10:00")
	require.True(t, ok)
	assert.Equal(t, 450.1234, v)
}

func TestReadTableAcceptsPandasOutput(t *testing.T) {
	// No BOM, float-formatted integers, trailing empty cells.
	in := "item_name,2026-03-02 09:00,2026-03-02 10:00\n창연,1200.0,\n"
	got, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	v, ok := got.Get("창연", "2026-03-02 09:00")
	require.True(t, ok)
	assert.Equal(t, 1200.0, v)
	_, ok = got.Get("창연", "2026-03-02 10:00")
	assert.False(t, ok)
}

func TestReadTableRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"bad column":    "item_name,yesterday\n창연,1\n",
		"bad number":    "item_name,2026-03-02 09:00\n창연,abc\n",
		"duplicate row": "item_name,2026-03-02 09:00\n창연,1\n창연,2\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(in))
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestCSVTableStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "market_history.csv")
	s := NewCSVTableStore(path)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	tbl := NewWideTable()
	tbl.Set("창연", "2026-03-02 09:00", 12.5)
	require.NoError(t, s.Save(ctx, tbl))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, bom))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	v, ok := got.Get("창연", "2026-03-02 09:00")
	require.True(t, ok)
	assert.Equal(t, 12.5, v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestCSVCatalogStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "item_dict.csv")
	s := NewCSVCatalogStore(path)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, seededCatalog(t)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "item_id,item_name\n122284,WoW 토큰\n210932,창연\n221758,더럽혀진 부싯깃 상자\n"
	assert.Equal(t, want, string(bytes.TrimPrefix(raw, bom)))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
	name, ok := got.Name(210932)
	require.True(t, ok)
	assert.Equal(t, "창연", name)
}

func TestCSVCatalogStoreCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item_dict.csv")
	require.NoError(t, os.WriteFile(path, []byte("item_id,item_name\n1,Same\n2,Same\n"), 0o644))

	_, err := NewCSVCatalogStore(path).Load(context.Background())
	var nce *NameCollisionError
	assert.ErrorAs(t, err, &nce)
}

func TestCSVCatalogStoreEmptyName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item_dict.csv")
	require.NoError(t, os.WriteFile(path, []byte("item_id,item_name\n210932,창연\n5,\n"), 0o644))

	_, err := NewCSVCatalogStore(path).Load(context.Background())
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Line)
	assert.ErrorIs(t, err, ErrEmptyName)
}
