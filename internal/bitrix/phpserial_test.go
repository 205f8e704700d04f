package bitrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIDListStrings(t *testing.T) {
	ids := parseIDList(`a:2:{i:0;s:7:"1253122";i:1;s:5:"91005";}`)
	assert.Equal(t, []int64{1253122, 91005}, ids)
}

func TestParseIDListInts(t *testing.T) {
	ids := parseIDList(`a:3:{i:0;i:1;i:1;i:2;i:2;i:3;}`)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestParseIDListMixed(t *testing.T) {
	ids := parseIDList(`a:2:{i:0;i:482917;i:1;s:7:"1253122";}`)
	assert.Equal(t, []int64{482917, 1253122}, ids)
}

func TestParseIDListEmptyAndGarbage(t *testing.T) {
	assert.Nil(t, parseIDList(""))
	assert.Nil(t, parseIDList("a:0:{}"))
	assert.Nil(t, parseIDList("not serialized at all"))
}

func TestParseIDListSkipsUnparsable(t *testing.T) {
	// строковое значение не из цифр — пропускается, остальное живёт
	ids := parseIDList(`a:2:{i:0;s:3:"abc";i:1;s:4:"1234";}`)
	assert.Equal(t, []int64{1234}, ids)
}
