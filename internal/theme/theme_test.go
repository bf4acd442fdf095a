package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamed(t *testing.T) {
	assert.Equal(t, "green", Named("green").Name)
	assert.Equal(t, "amber", Named("amber").Name)
	assert.Equal(t, "green", Named("unknown").Name)
}

func TestPlainLeavesTextAlone(t *testing.T) {
	p := Named("plain")
	assert.Equal(t, "ID   | Name", p.Header.Render("ID   | Name"))
	assert.Equal(t, "Error: x", p.Error.Render("Error: x"))
}

func TestExists(t *testing.T) {
	for _, name := range Names {
		assert.True(t, Exists(name), name)
		assert.Equal(t, name, Named(name).Name)
	}
	assert.False(t, Exists("neon"))
	assert.False(t, Exists(""))
}
