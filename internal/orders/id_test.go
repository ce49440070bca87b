package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDGeneratorFormat(t *testing.T) {
	g := NewIDGenerator()
	g.now = func() time.Time {
		return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	assert.Equal(t, "PED-20250314150926", g.Next())
}

func TestIDGeneratorSameSecondDisambiguation(t *testing.T) {
	g := NewIDGenerator()
	g.now = func() time.Time {
		return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	}

	assert.Equal(t, "PED-20250314150926", g.Next())
	assert.Equal(t, "PED-20250314150926-1", g.Next())
	assert.Equal(t, "PED-20250314150926-2", g.Next())
}

func TestIDGeneratorResetsOnNewSecond(t *testing.T) {
	g := NewIDGenerator()
	current := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	g.now = func() time.Time { return current }

	assert.Equal(t, "PED-20250314150926", g.Next())
	assert.Equal(t, "PED-20250314150926-1", g.Next())

	current = current.Add(time.Second)
	assert.Equal(t, "PED-20250314150927", g.Next())
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("PED-20250314150926"))
	assert.True(t, IsCanonical("PED-20250314150926-1"))

	// Identificadores legados pasan por el sistema sin reformatear
	assert.False(t, IsCanonical("ORD-12345"))
	assert.False(t, IsCanonical("PED-2025"))
	assert.False(t, IsCanonical("PED-2025031415092X"))
}
