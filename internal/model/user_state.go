package model

import (
	"time"

	"github.com/mitr-crm01/disband-cars-bot/internal/state"
)

// UserState представляет положение пользователя в сценарии расформирования.
// Стек состояний хранится строкой (см. пакет state), один ряд на пользователя.
type UserState struct {
	ID             int64     `gorm:"primary_key" json:"id"`
	TelegramUserID int64     `gorm:"unique_index;not null" json:"telegram_user_id"`
	IsAllowed      bool      `gorm:"not null;default:false" json:"is_allowed"`
	State          string    `gorm:"not null" json:"state"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (UserState) TableName() string {
	return "telegram_user_states"
}

// Stack возвращает раскодированный стек состояний.
func (s *UserState) Stack() []string {
	return state.Decode(s.State)
}

// Current возвращает верхний токен стека или "start" для пустого стека.
func (s *UserState) Current() string {
	return state.Current(s.Stack())
}

// Push добавляет токен на вершину стека.
func (s *UserState) Push(token string) {
	s.State = state.Encode(append(s.Stack(), token))
}

// Pop снимает верхний токен. Нижний токен initial не снимается никогда:
// на одноэлементном стеке это no-op.
func (s *UserState) Pop() {
	tokens := s.Stack()
	if len(tokens) <= 1 {
		return
	}
	s.State = state.Encode(tokens[:len(tokens)-1])
}

// Reset возвращает стек к initial, не трогая is_allowed.
func (s *UserState) Reset() {
	s.State = state.Initial
}
