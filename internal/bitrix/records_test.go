package bitrix

import (
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Схема Битрикса воспроизводится в sqlite ровно настолько, насколько её
// трогают запросы провайдера.
func newTestRecords(t *testing.T) *Records {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE b_crm_deal (ID INTEGER PRIMARY KEY, TITLE TEXT, STAGE_ID TEXT)`,
		`CREATE TABLE b_uts_crm_deal (VALUE_ID INTEGER PRIMARY KEY, UF_CRM_1663349303 TEXT, UF_CRM_1695214894 TEXT)`,
		`CREATE TABLE b_user (ID INTEGER PRIMARY KEY, WORK_PHONE TEXT, LAST_LOGIN DATETIME)`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return NewRecords(db, "C87:UC_5Y16D8")
}

func TestAvailableCarriers(t *testing.T) {
	r := newTestRecords(t)
	require.NoError(t, r.db.Exec(
		`INSERT INTO b_crm_deal (ID, TITLE, STAGE_ID) VALUES
			(482, 'Автовоз 482-МСК', 'C87:UC_5Y16D8'),
			(483, 'Автовоз 483-СПБ', 'C87:UC_5Y16D8'),
			(999, 'Обычная сделка', 'C87:OTHER')`).Error)

	deals, err := r.AvailableCarriers()
	require.NoError(t, err)
	require.Len(t, deals, 2)
	assert.Equal(t, int64(482), deals[0].ID)
	assert.Equal(t, "Автовоз 482-МСК", deals[0].Title)
}

func TestCarIDs(t *testing.T) {
	r := newTestRecords(t)
	require.NoError(t, r.db.Exec(
		`INSERT INTO b_uts_crm_deal (VALUE_ID, UF_CRM_1663349303) VALUES
			(482, 'a:2:{i:0;s:5:"91005";i:1;s:5:"91006";}')`).Error)

	ids, err := r.CarIDs(482)
	require.NoError(t, err)
	assert.Equal(t, []int64{91005, 91006}, ids)

	// нет ряда — пустой список, не ошибка
	ids, err = r.CarIDs(999)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDealLookups(t *testing.T) {
	r := newTestRecords(t)
	require.NoError(t, r.db.Exec(
		`INSERT INTO b_crm_deal (ID, TITLE, STAGE_ID) VALUES (91005, 'А123ВС 777', 'C87:CAR')`).Error)

	title, err := r.DealTitle(91005)
	require.NoError(t, err)
	assert.Equal(t, "А123ВС 777", title)

	title, err = r.DealTitle(1)
	require.NoError(t, err)
	assert.Empty(t, title)

	id, err := r.DealIDByTitle("А123ВС 777")
	require.NoError(t, err)
	assert.Equal(t, int64(91005), id)

	id, err = r.DealIDByTitle("нет такой")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestCarOperationID(t *testing.T) {
	r := newTestRecords(t)
	require.NoError(t, r.db.Exec(
		`INSERT INTO b_uts_crm_deal (VALUE_ID, UF_CRM_1695214894) VALUES (91005, '1253122'), (91006, NULL)`).Error)

	id, err := r.CarOperationID(91005)
	require.NoError(t, err)
	assert.Equal(t, int64(1253122), id)

	id, err = r.CarOperationID(91006)
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestOperatorIDByPhone(t *testing.T) {
	r := newTestRecords(t)

	fresh := time.Now().AddDate(0, 0, -5)
	stale := time.Now().AddDate(0, 0, -45)
	require.NoError(t, r.db.Exec(
		`INSERT INTO b_user (ID, WORK_PHONE, LAST_LOGIN) VALUES (7, ?, ?), (8, ?, ?)`,
		"+79990001122", fresh, "+79995556677", stale).Error)

	id, err := r.OperatorIDByPhone("+79990001122")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	// логин старше окна — оператор не найден
	id, err = r.OperatorIDByPhone("+79995556677")
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = r.OperatorIDByPhone("+70000000000")
	require.NoError(t, err)
	assert.Zero(t, id)
}
