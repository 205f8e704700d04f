// Package repository — локальное хранилище бота: пользователи, стеки
// состояний, кэш автовозов и архив расформирований.
package repository

import (
	"fmt"
	"log/slog"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/mitr-crm01/disband-cars-bot/internal/model"
	"github.com/mitr-crm01/disband-cars-bot/internal/state"
)

type Store struct {
	db *gorm.DB
}

// Open подключается к локальной базе. Непустой databaseURL — postgres,
// пустой — sqlite-файл для разработки.
func Open(databaseURL string) (*gorm.DB, error) {
	if databaseURL != "" {
		slog.Info("using postgres for local store")
		return gorm.Open("postgres", databaseURL)
	}
	slog.Info("using sqlite for local store")
	return gorm.Open("sqlite3", "db/database.db")
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate создаёт таблицы бота.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&model.TelegramUser{},
		&model.UserState{},
		&model.Carrier{},
		&model.Disbandment{},
	).Error
}

// Load возвращает пользователя и его состояние по telegram_id, создавая
// обоих при первом контакте. Создание идёт в одной транзакции; уникальный
// индекс по telegram_id не даёт гонке двух доставок завести два ряда.
func (s *Store) Load(telegramID int64, firstName string) (*model.TelegramUser, *model.UserState, error) {
	var user model.TelegramUser
	var st model.UserState

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(model.TelegramUser{TelegramID: telegramID}).
			Attrs(model.TelegramUser{FirstName: firstName}).
			FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		if err := tx.Where(model.UserState{TelegramUserID: user.ID}).
			Attrs(model.UserState{IsAllowed: false, State: state.Initial}).
			FirstOrCreate(&st).Error; err != nil {
			return fmt.Errorf("failed to load user state: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &user, &st, nil
}

// UpsertUser обновляет профиль по telegram_id, не затирая номер телефона.
func (s *Store) UpsertUser(u *model.TelegramUser) error {
	var existing model.TelegramUser
	err := s.db.Where(model.TelegramUser{TelegramID: u.TelegramID}).First(&existing).Error
	if gorm.IsRecordNotFoundError(err) {
		return s.db.Create(u).Error
	}
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.Username = u.Username
	existing.LanguageCode = u.LanguageCode
	existing.IsPremium = u.IsPremium
	if err := s.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	*u = existing
	return nil
}

// SetPhoneNumber сохраняет подтверждённый номер. Пустым номер после
// подтверждения не становится никогда.
func (s *Store) SetPhoneNumber(u *model.TelegramUser, phone string) error {
	if phone == "" {
		return nil
	}
	u.PhoneNumber = phone
	return s.db.Model(u).Update("phone_number", phone).Error
}

// PushState кладёт токен на стек и сразу сохраняет: переход должен пережить
// падение до отправки ответа.
func (s *Store) PushState(st *model.UserState, token string) error {
	st.Push(token)
	return s.db.Save(st).Error
}

// PopState снимает верхний токен; на стеке из одного initial — no-op.
func (s *Store) PopState(st *model.UserState) error {
	st.Pop()
	return s.db.Save(st).Error
}

// ResetState возвращает стек к initial, is_allowed не трогает.
func (s *Store) ResetState(st *model.UserState) error {
	st.Reset()
	return s.db.Save(st).Error
}

// SetAllowed открывает или закрывает пользователю доступ к сценарию.
func (s *Store) SetAllowed(st *model.UserState, allowed bool) error {
	st.IsAllowed = allowed
	return s.db.Model(st).Update("is_allowed", allowed).Error
}

// UpsertCarrier обновляет кэш автовоза по битриксовому ID сделки.
func (s *Store) UpsertCarrier(bitrixID int64, title string) error {
	var carrier model.Carrier
	err := s.db.Where(model.Carrier{BID: bitrixID}).First(&carrier).Error
	if gorm.IsRecordNotFoundError(err) {
		return s.db.Create(&model.Carrier{BID: bitrixID, BTitle: title}).Error
	}
	if err != nil {
		return err
	}

	carrier.BTitle = title
	return s.db.Save(&carrier).Error
}

// CarrierByTitle ищет автовоз в кэше по полному названию сделки.
func (s *Store) CarrierByTitle(title string) (*model.Carrier, error) {
	var carrier model.Carrier
	err := s.db.Where(model.Carrier{BTitle: title}).First(&carrier).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &carrier, nil
}

// CarrierByBitrixID ищет автовоз в кэше по ID сделки.
func (s *Store) CarrierByBitrixID(bitrixID int64) (*model.Carrier, error) {
	var carrier model.Carrier
	err := s.db.Where(model.Carrier{BID: bitrixID}).First(&carrier).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &carrier, nil
}

// CreateDisbandment пишет запись в архив расформирований.
func (s *Store) CreateDisbandment(d *model.Disbandment) error {
	d.GenerateID()
	return s.db.Create(d).Error
}

// RecentDisbandments возвращает последние записи архива пользователя.
func (s *Store) RecentDisbandments(telegramUserID int64, limit int) ([]model.Disbandment, error) {
	var out []model.Disbandment
	err := s.db.Where("telegram_user_id = ?", telegramUserID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
