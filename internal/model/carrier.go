package model

import "time"

// Carrier — локальный кэш сделки-автовоза из Битрикса. Обновляется при
// каждом построении списка автовозов; нужен, чтобы по подписи кнопки
// восстановить ID сделки без обратного похода в Битрикс.
type Carrier struct {
	ID         int64     `gorm:"primary_key" json:"id"`
	BID        int64     `gorm:"column:b_id;unique_index;not null" json:"b_id"`
	BTitle     string    `gorm:"column:b_title;not null" json:"b_title"`
	IsDisabled bool      `gorm:"not null;default:false" json:"is_disabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Carrier) TableName() string {
	return "carriers"
}
