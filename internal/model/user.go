package model

import "time"

// TelegramUser — пользователь бота, один на telegram-аккаунт.
type TelegramUser struct {
	ID           int64     `gorm:"primary_key" json:"id"`
	TelegramID   int64     `gorm:"unique_index;not null" json:"telegram_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	PhoneNumber  string    `json:"phone_number"`
	LanguageCode string    `json:"language_code"`
	IsPremium    bool      `json:"is_premium"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (TelegramUser) TableName() string {
	return "telegram_users"
}
