package repository

import (
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitr-crm01/disband-cars-bot/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	require.NoError(t, s.AutoMigrate())
	return s
}

func TestLoadCreatesUserAndState(t *testing.T) {
	s := newTestStore(t)

	user, st, err := s.Load(111, "Иван")
	require.NoError(t, err)
	assert.Equal(t, int64(111), user.TelegramID)
	assert.Equal(t, "Иван", user.FirstName)
	assert.False(t, st.IsAllowed)
	assert.Equal(t, "initial", st.State)

	// Повторная загрузка не плодит ряды
	again, st2, err := s.Load(111, "Иван")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, st.ID, st2.ID)
}

func TestPushPopReset(t *testing.T) {
	s := newTestStore(t)
	_, st, err := s.Load(222, "Пётр")
	require.NoError(t, err)

	require.NoError(t, s.PushState(st, "available_carriers"))
	require.NoError(t, s.PushState(st, "selected_carriers-482"))
	assert.Equal(t, "initial:available_carriers:selected_carriers-482", st.State)
	assert.Equal(t, "selected_carriers-482", st.Current())

	require.NoError(t, s.PopState(st))
	assert.Equal(t, "initial:available_carriers", st.State)

	// Нижний initial не снимается никаким количеством "Назад"
	require.NoError(t, s.PopState(st))
	require.NoError(t, s.PopState(st))
	require.NoError(t, s.PopState(st))
	assert.Equal(t, "initial", st.State)

	require.NoError(t, s.PushState(st, "available_carriers"))
	require.NoError(t, s.ResetState(st))
	assert.Equal(t, "initial", st.State)

	// Состояние долетело до базы
	_, reloaded, err := s.Load(222, "Пётр")
	require.NoError(t, err)
	assert.Equal(t, "initial", reloaded.State)
}

func TestResetKeepsIsAllowed(t *testing.T) {
	s := newTestStore(t)
	_, st, err := s.Load(333, "Анна")
	require.NoError(t, err)

	st.IsAllowed = true
	require.NoError(t, s.db.Save(st).Error)
	require.NoError(t, s.PushState(st, "available_carriers"))

	require.NoError(t, s.ResetState(st))
	assert.True(t, st.IsAllowed)
}

func TestSetPhoneNumber(t *testing.T) {
	s := newTestStore(t)
	user, _, err := s.Load(444, "Олег")
	require.NoError(t, err)

	require.NoError(t, s.SetPhoneNumber(user, "+79990001122"))
	assert.Equal(t, "+79990001122", user.PhoneNumber)

	// Пустое значение номер не затирает
	require.NoError(t, s.SetPhoneNumber(user, ""))
	reloaded, _, err := s.Load(444, "Олег")
	require.NoError(t, err)
	assert.Equal(t, "+79990001122", reloaded.PhoneNumber)
}

func TestUpsertUserKeepsPhone(t *testing.T) {
	s := newTestStore(t)
	user, _, err := s.Load(555, "Мария")
	require.NoError(t, err)
	require.NoError(t, s.SetPhoneNumber(user, "+79991112233"))

	fresh := &model.TelegramUser{TelegramID: 555, FirstName: "Мария", Username: "maria"}
	require.NoError(t, s.UpsertUser(fresh))
	assert.Equal(t, "maria", fresh.Username)
	assert.Equal(t, "+79991112233", fresh.PhoneNumber)
}

func TestCarrierCache(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertCarrier(482, "Автовоз 482-МСК"))
	require.NoError(t, s.UpsertCarrier(482, "Автовоз 482-СПБ")) // переименование

	byTitle, err := s.CarrierByTitle("Автовоз 482-СПБ")
	require.NoError(t, err)
	require.NotNil(t, byTitle)
	assert.Equal(t, int64(482), byTitle.BID)

	byID, err := s.CarrierByBitrixID(482)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Автовоз 482-СПБ", byID.BTitle)

	missing, err := s.CarrierByTitle("Автовоз 999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDisbandmentArchive(t *testing.T) {
	s := newTestStore(t)
	user, _, err := s.Load(666, "Дмитрий")
	require.NoError(t, err)

	d := &model.Disbandment{
		TelegramUserID: user.ID,
		CarrierBID:     482,
		CarrierTitle:   "Автовоз 482-МСК",
		Date:           "15.06.2026",
		WholeCarrier:   true,
	}
	require.NoError(t, s.CreateDisbandment(d))
	assert.NotEmpty(t, d.ID)

	recent, err := s.RecentDisbandments(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "15.06.2026", recent[0].Date)
}
