package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/schema"
)

// JSONFile keeps the collection in a human-readable JSON array.
type JSONFile struct {
	path      string
	validator *schema.Validator
}

var _ Backend = (*JSONFile)(nil)

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, validator: schema.NewValidator()}
}

func (f *JSONFile) Location() string { return f.path }

// Load treats a missing or unparseable file as an empty collection.
// Any other read failure is returned so that unreadable data is never
// overwritten by a later save.
func (f *JSONFile) Load() ([]contact.Contact, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []contact.Contact{}, nil
		}
		return nil, err
	}
	return DecodeContacts(f.validator, data), nil
}

func (f *JSONFile) Save(contacts []contact.Contact) error {
	data, err := EncodeContacts(contacts)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

// DecodeContacts parses a JSON array of contacts, keeping only the elements
// that have an integral id plus a name and a number. Anything that is not
// such an array decodes to an empty collection.
func DecodeContacts(v *schema.Validator, data []byte) []contact.Contact {
	contacts, _, _ := DecodeElements(v, data)
	return contacts
}

// DecodeElements is DecodeContacts that also reports, for each kept contact,
// its 0-based position in the source array, and the length of that array.
func DecodeElements(v *schema.Validator, data []byte) ([]contact.Contact, []int, int) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return []contact.Contact{}, nil, 0
	}
	if _, err := dec.Token(); err != io.EOF {
		return []contact.Contact{}, nil, 0
	}
	elems, ok := doc.([]any)
	if !ok {
		return []contact.Contact{}, nil, 0
	}

	valid, err := v.Filter(schema.ContactRecord, elems)
	if err != nil {
		return []contact.Contact{}, nil, len(elems)
	}

	contacts := make([]contact.Contact, 0, len(valid))
	positions := make([]int, 0, len(valid))
	for _, i := range valid {
		if c, ok := fromObject(elems[i].(map[string]any)); ok {
			contacts = append(contacts, c)
			positions = append(positions, i)
		}
	}
	return contacts, positions, len(elems)
}

// EncodeContacts renders the collection with four-space indentation and
// keys in id, name, number order. Non-ASCII text is written as is.
func EncodeContacts(contacts []contact.Contact) ([]byte, error) {
	if contacts == nil {
		contacts = []contact.Contact{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(contacts); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func fromObject(obj map[string]any) (contact.Contact, bool) {
	id, ok := integer(obj["id"])
	if !ok {
		return contact.Contact{}, false
	}
	name, ok := text(obj["name"])
	if !ok {
		return contact.Contact{}, false
	}
	number, ok := text(obj["number"])
	if !ok {
		return contact.Contact{}, false
	}
	return contact.Contact{ID: id, Name: name, Number: number}, true
}

func integer(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		if i < math.MinInt || i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	}
	// 3.0 and 1e10 are integers as far as JSON Schema is concerned.
	// float64(math.MaxInt) rounds up to 2^63, hence >=.
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}

func text(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	}
	return "", false
}
