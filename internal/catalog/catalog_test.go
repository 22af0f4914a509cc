package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceByName(t *testing.T) {
	svc, ok := ServiceByName("Corte + Barba")
	require.True(t, ok)
	assert.Equal(t, 45, svc.DurationMinutes)
	assert.Equal(t, float64(45), svc.Price)

	_, ok = ServiceByName("Manicure")
	assert.False(t, ok)
}

func TestBarberLookups(t *testing.T) {
	b, ok := BarberByDisplayName("joão")
	require.True(t, ok)
	assert.Equal(t, "joao", b.ID)

	b, ok = BarberByID("lucas")
	require.True(t, ok)
	assert.Equal(t, "Lucas", b.DisplayName)

	_, ok = BarberByDisplayName("Zé")
	assert.False(t, ok)
}

func TestAllowedSlots(t *testing.T) {
	assert.True(t, IsAllowedSlot("09:00"))
	assert.True(t, IsAllowedSlot("16:00"))
	assert.False(t, IsAllowedSlot("12:00"))
	assert.Len(t, AllowedSlots, 7)
}

func TestBarberNames(t *testing.T) {
	assert.Equal(t, []string{"João", "Pedro", "Lucas"}, BarberNames())
}
