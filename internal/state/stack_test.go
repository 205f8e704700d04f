package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	stacks := [][]string{
		{"initial"},
		{"initial", "available_carriers"},
		{"initial", "available_carriers", "selected_carriers-482"},
		{"initial", "available_carriers", "selected_carriers-482", "available_month", "selected_month-6", "selected_number-15"},
	}

	for _, s := range stacks {
		assert.Equal(t, s, Decode(Encode(s)))
	}
}

func TestDecodeEmpty(t *testing.T) {
	assert.Empty(t, Decode(""))
	assert.Equal(t, Start, Current(Decode("")))
}

func TestDecodeMalformedPassesThrough(t *testing.T) {
	// Кривые токены не валидируются, структура сохраняется
	assert.Equal(t, []string{"initial", "", "x--y"}, Decode("initial::x--y"))
}

func TestCurrent(t *testing.T) {
	assert.Equal(t, "selected_carriers-482", Current([]string{"initial", "selected_carriers-482"}))
	assert.Equal(t, "initial", Current([]string{"initial"}))
}

func TestBaseAndPayload(t *testing.T) {
	assert.Equal(t, "selected_carriers", Base("selected_carriers-482"))
	assert.Equal(t, "initial", Base("initial"))

	payload, ok := Payload("selected_carriers-482")
	assert.True(t, ok)
	assert.Equal(t, "482", payload)

	_, ok = Payload("initial")
	assert.False(t, ok)

	// Полезная нагрузка — всё после первого "-"
	payload, ok = Payload("selected_month-6-extra")
	assert.True(t, ok)
	assert.Equal(t, "6-extra", payload)
}
