package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDisbandAll(t *testing.T) {
	stack := Decode("initial:available_carriers:selected_carriers-482:available_month:selected_month-6:selected_number-15")

	sel, ok := ExtractDisbandAll(stack)
	require.True(t, ok)
	assert.Equal(t, int64(482), sel.CarrierID)
	assert.Equal(t, 6, sel.Month)
	assert.Equal(t, 15, sel.Day)
}

func TestExtractDisbandAllIncomplete(t *testing.T) {
	cases := []string{
		"initial",
		"initial:available_carriers:selected_carriers-482",
		"initial:available_carriers:selected_carriers-482:available_month:selected_month-6",
		// нечисловая нагрузка
		"initial:available_carriers:selected_carriers-abc:available_month:selected_month-6:selected_number-15",
		// месяц вне диапазона
		"initial:available_carriers:selected_carriers-482:available_month:selected_month-13:selected_number-15",
	}

	for _, c := range cases {
		_, ok := ExtractDisbandAll(Decode(c))
		assert.False(t, ok, c)
	}
}

func TestExtractDisbandCar(t *testing.T) {
	stack := Decode("initial:available_carriers:selected_carriers-482:selected_car-91005:accept_disband_car")

	sel, ok := ExtractDisbandCar(stack)
	require.True(t, ok)
	assert.Equal(t, int64(482), sel.CarrierID)
	assert.Equal(t, int64(91005), sel.CarID)
}

func TestExtractDisbandCarMissing(t *testing.T) {
	_, ok := ExtractDisbandCar(Decode("initial:available_carriers:selected_carriers-482"))
	assert.False(t, ok)
}
