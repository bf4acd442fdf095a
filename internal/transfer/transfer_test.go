package transfer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/store"
)

var sample = []contact.Contact{
	{ID: 1, Name: "Alice", Number: "012345"},
	{ID: 4, Name: "Bob, Jr.", Number: "999"},
}

// memAdder mimics the store's id assignment.
type memAdder struct {
	contacts []contact.Contact
	failAt   int
	location string
}

func (m *memAdder) Location() string { return m.location }

func (m *memAdder) Add(name, number string) (contact.Contact, error) {
	c := contact.Contact{ID: contact.NextID(m.contacts), Name: name, Number: number}
	m.contacts = append(m.contacts, c)
	if m.failAt > 0 && len(m.contacts) == m.failAt {
		return c, &store.SaveError{Location: "mem", Err: os.ErrPermission}
	}
	return c, nil
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("a/b/Contacts.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatOf("contacts.pdf")
	assert.ErrorContains(t, err, ".pdf")
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, ext := range []string{"csv", "xlsx", "json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "contacts."+ext)
			require.NoError(t, Export(path, sample))

			drafts, skipped, err := ReadFile(path)
			require.NoError(t, err)
			assert.Empty(t, skipped)
			require.Len(t, drafts, 2)
			assert.Equal(t, "Alice", drafts[0].Name)
			assert.Equal(t, "012345", drafts[0].Number, "leading zeros survive")
			assert.Equal(t, "Bob, Jr.", drafts[1].Name)
		})
	}
}

func TestExportCSV_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, Export(path, sample))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Number\n1,Alice,012345\n4,\"Bob, Jr.\",999\n", string(data))
}

func TestReadFile_TwoColumnsAndBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("Carol,555\nlonely\n Dan , 777 \n"), 0644))

	drafts, skipped, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Draft{
		{Name: "Carol", Number: "555", Row: 1},
		{Name: "Dan", Number: "777", Row: 3},
	}, drafts)
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Row)
}

func TestImport_GlobAndValidation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "one.csv"), []byte("ID,Name,Number\n7,Eve,111\n8,,222\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "two.csv"), []byte("Frank,12a\nGina,333\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "notes.txt"), []byte("ignored"), 0644))

	dst := &memAdder{contacts: []contact.Contact{{ID: 3, Name: "Old", Number: "1"}}}
	rep, err := Import(dst, filepath.Join(dir, "a", "**", "*.csv"))
	require.NoError(t, err)

	assert.Len(t, rep.Files, 2)
	require.Len(t, rep.Added, 2)
	assert.Equal(t, contact.Contact{ID: 4, Name: "Gina", Number: "333"}, rep.Added[0], "files are read in sorted order")
	assert.Equal(t, contact.Contact{ID: 5, Name: "Eve", Number: "111"}, rep.Added[1], "source ids are ignored")
	assert.Len(t, rep.Skipped, 2)
	for _, s := range rep.Skipped {
		assert.ErrorIs(t, s.Err, contact.ErrInvalidArgument)
	}
}

func TestImport_NoMatch(t *testing.T) {
	_, err := Import(&memAdder{}, filepath.Join(t.TempDir(), "*.csv"))
	assert.ErrorContains(t, err, "no files match")
}

func TestImport_StopsOnSaveError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("A,1\nB,2\nC,3\n"), 0644))

	rep, err := Import(&memAdder{failAt: 2}, path)
	var se *store.SaveError
	require.True(t, errors.As(err, &se))
	assert.Len(t, rep.Added, 2)
}

func TestPreview_DoesNotMutate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("Zoe,42\n"), 0644))

	current := []contact.Contact{{ID: 1, Name: "Alice", Number: "1"}}
	rep, diff, err := Preview(current, "storage.json", path)
	require.NoError(t, err)

	assert.Len(t, current, 1)
	require.Len(t, rep.Added, 1)
	assert.Equal(t, 2, rep.Added[0].ID)
	assert.Contains(t, diff, "--- storage.json")
	assert.Contains(t, diff, `+        "name": "Zoe",`)
}

func TestDiff_NoChanges(t *testing.T) {
	diff, err := Diff("storage.json", sample, sample)
	require.NoError(t, err)
	assert.False(t, strings.Contains(diff, "+    "))
}

func TestImport_SkipsOwnStorage(t *testing.T) {
	dir := t.TempDir()
	storage := filepath.Join(dir, "storage.json")
	data, err := store.EncodeContacts(sample)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(storage, data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "friends.json"),
		[]byte(`[{"id": 7, "name": "Zoe", "number": "777"}]`), 0644))

	dst := &memAdder{contacts: append([]contact.Contact(nil), sample...), location: storage}
	rep, err := Import(dst, filepath.Join(dir, "*.json"))
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "friends.json")}, rep.Files)
	require.Len(t, rep.Added, 1)
	assert.Equal(t, "Zoe", rep.Added[0].Name)
	assert.Len(t, dst.contacts, 3)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, storage, rep.Skipped[0].File)
	assert.ErrorIs(t, rep.Skipped[0].Err, errOwnStorage)
}

func TestImport_OwnStorageMatchedThroughRelativePath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("storage.json", []byte(`[{"id": 1, "name": "A", "number": "1"}]`), 0644))

	dst := &memAdder{location: filepath.Join(dir, "storage.json")}
	rep, err := Import(dst, "*.json")
	require.NoError(t, err)
	assert.Empty(t, rep.Files)
	assert.Empty(t, dst.contacts)
	assert.Len(t, rep.Skipped, 1)
}

func TestPreview_SkipsOwnStorage(t *testing.T) {
	dir := t.TempDir()
	storage := filepath.Join(dir, "storage.json")
	data, err := store.EncodeContacts(sample)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(storage, data, 0644))

	rep, diff, err := Preview(sample, storage, filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Empty(t, rep.Added)
	assert.Len(t, rep.Skipped, 1)
	assert.NotContains(t, diff, "+    ")
}

func TestReadFile_JSONRowsPointAtSourceElements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	raw := `[
		"noise",
		{"id": 1, "name": "  Ann  ", "number": " 111 "},
		{"id": 2, "name": "NoNumber"},
		{"id": 3, "name": "Bob", "number": "22-33"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	drafts, skipped, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []Draft{
		{Name: "Ann", Number: "111", Row: 2},
		{Name: "Bob", Number: "22-33", Row: 4},
	}, drafts)
	require.Len(t, skipped, 2)
	assert.Equal(t, 1, skipped[0].Row)
	assert.Equal(t, 3, skipped[1].Row)

	dst := &memAdder{}
	rep, err := Import(dst, path)
	require.NoError(t, err)
	require.Len(t, rep.Added, 1)
	assert.Equal(t, contact.Contact{ID: 1, Name: "Ann", Number: "111"}, rep.Added[0])
	require.Len(t, rep.Skipped, 3)
	assert.Equal(t, 4, rep.Skipped[2].Row, "validation failures keep the source row")
}
