package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/schema"
)

// countingBackend records how often Save is called.
type countingBackend struct {
	initial []contact.Contact
	saved   []contact.Contact
	saves   int
	err     error
}

func (b *countingBackend) Load() ([]contact.Contact, error) { return b.initial, nil }
func (b *countingBackend) Location() string                 { return "memory" }
func (b *countingBackend) Save(cs []contact.Contact) error {
	b.saves++
	if b.err != nil {
		return b.err
	}
	b.saved = append([]contact.Contact(nil), cs...)
	return nil
}

func openJSON(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.json")
	s, err := Open(NewJSONFile(path), nil)
	require.NoError(t, err)
	return s, path
}

func TestOpen_MissingAndEmptyAreEquivalent(t *testing.T) {
	missing, _ := openJSON(t)

	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))
	empty, err := Open(NewJSONFile(path), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, missing.Len())
	assert.Equal(t, missing.Contacts(), empty.Contacts())
}

func TestOpen_UnusableContentIsEmpty(t *testing.T) {
	for name, raw := range map[string]string{
		"garbage":       "not json at all",
		"object":        `{"id": 1, "name": "A", "number": "1"}`,
		"truncated":     `[{"id": 1, "name": "A"`,
		"trailing data": `[] []`,
		"empty file":    "",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "storage.json")
			require.NoError(t, os.WriteFile(path, []byte(raw), 0644))
			s, err := Open(NewJSONFile(path), nil)
			require.NoError(t, err)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestOpen_FiltersMalformedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	raw := `[
		{"id": 1, "name": "Anna", "number": "111"},
		{"id": 2, "name": "NoNumber"},
		"just a string",
		{"id": 3, "name": "Bob", "number": "22-33"},
		[1, "x", "y"],
		{"name": "NoID", "number": "5"},
		{"id": 4.0, "name": "Carl", "number": 444}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	s, err := Open(NewJSONFile(path), nil)
	require.NoError(t, err)

	assert.Equal(t, []contact.Contact{
		{ID: 1, Name: "Anna", Number: "111"},
		{ID: 3, Name: "Bob", Number: "22-33"},
		{ID: 4, Name: "Carl", Number: "444"},
	}, s.Contacts())
}

func TestDecodeContacts_IDRangeIsTheSameForEveryNotation(t *testing.T) {
	raw := `[
		{"id": 10000000000, "name": "Plain", "number": "1"},
		{"id": 1e10, "name": "Exponent", "number": "2"},
		{"id": 9223372036854775808, "name": "TooBig", "number": "3"},
		{"id": 9.3e18, "name": "TooBigFloat", "number": "4"},
		{"id": 2.5, "name": "Fraction", "number": "5"}
	]`
	got := DecodeContacts(schema.NewValidator(), []byte(raw))
	assert.Equal(t, []contact.Contact{
		{ID: 10000000000, Name: "Plain", Number: "1"},
		{ID: 10000000000, Name: "Exponent", Number: "2"},
	}, got)
}

func TestDecodeElements_ReportsSourcePositions(t *testing.T) {
	raw := `[
		{"id": 1, "name": "Anna", "number": "111"},
		"noise",
		{"id": 2, "name": "NoNumber"},
		{"id": 3, "name": "Bob", "number": "222"}
	]`
	contacts, positions, total := DecodeElements(schema.NewValidator(), []byte(raw))
	require.Len(t, contacts, 2)
	assert.Equal(t, []int{0, 3}, positions)
	assert.Equal(t, 4, total)
}

func TestOpen_ReadErrorIsReported(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(NewJSONFile(dir), nil)
	assert.Error(t, err)
}

func TestAdd_AssignsIncreasingIDs(t *testing.T) {
	s, _ := openJSON(t)

	for i := 0; i < 5; i++ {
		before := s.Contacts()
		c, err := s.Add("Name", "123")
		require.NoError(t, err)
		for _, old := range before {
			assert.Greater(t, c.ID, old.ID)
		}
	}

	require.NoError(t, s.Delete(5))
	c, err := s.Add("Again", "9")
	require.NoError(t, err)
	assert.Equal(t, 5, c.ID, "next id is max+1 of what is present")

	require.NoError(t, s.Delete(2))
	c, err = s.Add("Gap", "9")
	require.NoError(t, err)
	assert.Equal(t, 6, c.ID, "gaps are never refilled")
}

func TestAdd_ValidationGate(t *testing.T) {
	b := &countingBackend{}
	s, err := Open(b, nil)
	require.NoError(t, err)

	_, err = s.Add("", "123")
	assert.ErrorIs(t, err, contact.ErrInvalidArgument)
	_, err = s.Add("Alice", "12a3")
	assert.ErrorIs(t, err, contact.ErrInvalidArgument)

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, b.saves)
}

func TestUpdate(t *testing.T) {
	b := &countingBackend{initial: []contact.Contact{{ID: 1, Name: "Alice", Number: "111"}}}
	s, err := Open(b, nil)
	require.NoError(t, err)

	t.Run("bad number changes nothing", func(t *testing.T) {
		_, err := s.Update(1, "Bob", "12a")
		assert.ErrorIs(t, err, contact.ErrInvalidArgument)
		got, _ := s.Get(1)
		assert.Equal(t, contact.Contact{ID: 1, Name: "Alice", Number: "111"}, got)
		assert.Equal(t, 0, b.saves)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := s.Update(9, "Bob", "")
		assert.ErrorIs(t, err, contact.ErrNotFound)
		assert.Equal(t, 0, b.saves)
	})

	t.Run("empty values keep fields", func(t *testing.T) {
		c, err := s.Update(1, "", "")
		require.NoError(t, err)
		assert.Equal(t, "Alice", c.Name)
		assert.Equal(t, "111", c.Number)
		assert.Equal(t, 1, b.saves)
	})

	t.Run("partial update", func(t *testing.T) {
		c, err := s.Update(1, "", "222")
		require.NoError(t, err)
		assert.Equal(t, contact.Contact{ID: 1, Name: "Alice", Number: "222"}, c)
		assert.Equal(t, []contact.Contact{c}, b.saved)
	})
}

func TestDelete_MissingIDStillSaves(t *testing.T) {
	b := &countingBackend{initial: []contact.Contact{{ID: 1, Name: "A", Number: "1"}}}
	s, err := Open(b, nil)
	require.NoError(t, err)

	err = s.Delete(42)
	assert.ErrorIs(t, err, contact.ErrNotFound)
	assert.Equal(t, 1, b.saves)
	assert.Equal(t, 1, s.Len())
}

func TestDelete_RemovesEveryMatch(t *testing.T) {
	b := &countingBackend{initial: []contact.Contact{
		{ID: 1, Name: "A", Number: "1"},
		{ID: 2, Name: "B", Number: "2"},
		{ID: 1, Name: "A again", Number: "3"},
	}}
	s, err := Open(b, nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(1))
	assert.Equal(t, []contact.Contact{{ID: 2, Name: "B", Number: "2"}}, s.Contacts())
}

func TestSaveError_KeepsMemoryState(t *testing.T) {
	b := &countingBackend{err: &os.PathError{Op: "open", Path: "x", Err: os.ErrPermission}}
	s, err := Open(b, nil)
	require.NoError(t, err)

	c, err := s.Add("Alice", "1")
	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.PermissionDenied())
	assert.Equal(t, 1, c.ID)
	assert.Equal(t, 1, s.Len())
}

func TestSave_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	s, path := openJSON(t)
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0444))

	_, err := s.Add("Alice", "1")
	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.PermissionDenied())
	assert.Equal(t, 1, s.Len())
}

func TestSave_OtherFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "missing-dir", "storage.json")
	s, err := Open(NewJSONFile(target), nil)
	require.NoError(t, err)

	_, err = s.Add("Alice", "1")
	var se *SaveError
	require.True(t, errors.As(err, &se))
	assert.False(t, se.PermissionDenied())
}

func TestRoundTrip(t *testing.T) {
	s, path := openJSON(t)

	_, err := s.Add("Алиса", "12345")
	require.NoError(t, err)
	_, err = s.Add("Bob <b@x>", "999")
	require.NoError(t, err)
	_, err = s.Add("Carol", "555")
	require.NoError(t, err)
	_, err = s.Update(2, "Bobby", "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(1))

	reloaded, err := Open(NewJSONFile(path), nil)
	require.NoError(t, err)
	assert.Equal(t, s.Contacts(), reloaded.Contacts())
}

func TestConcreteScenario(t *testing.T) {
	s, path := openJSON(t)

	alice, err := s.Add("Alice", "12345")
	require.NoError(t, err)
	assert.Equal(t, contact.Contact{ID: 1, Name: "Alice", Number: "12345"}, alice)

	bob, err := s.Add("Bob", "999")
	require.NoError(t, err)
	assert.Equal(t, 2, bob.ID)

	require.NoError(t, s.Delete(1))
	assert.Equal(t, []contact.Contact{{ID: 2, Name: "Bob", Number: "999"}}, s.Contacts())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n    {\n        \"id\": 2,\n        \"name\": \"Bob\",\n        \"number\": \"999\"\n    }\n]", string(data))
}

func TestContacts_IsACopy(t *testing.T) {
	b := &countingBackend{initial: []contact.Contact{{ID: 1, Name: "A", Number: "1"}}}
	s, err := Open(b, nil)
	require.NoError(t, err)

	snap := s.Contacts()
	snap[0].Name = "changed"
	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestEncodeContacts(t *testing.T) {
	data, err := EncodeContacts(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = EncodeContacts([]contact.Contact{{ID: 1, Name: "Ёж & <co>", Number: "1"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Ёж & <co>"`)
}

func TestSQLite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonebook.db")
	backend, err := OpenSQLite(path)
	require.NoError(t, err)

	s, err := Open(backend, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, err = s.Add("Zed", "3")
	require.NoError(t, err)
	_, err = s.Add("Amy", "1")
	require.NoError(t, err)
	_, err = s.Update(1, "Zed Z", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	backend, err = OpenSQLite(path)
	require.NoError(t, err)
	defer backend.Close()
	reloaded, err := Open(backend, nil)
	require.NoError(t, err)
	assert.Equal(t, []contact.Contact{
		{ID: 1, Name: "Zed Z", Number: "3"},
		{ID: 2, Name: "Amy", Number: "1"},
	}, reloaded.Contacts())
}
