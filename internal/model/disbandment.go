package model

import (
	"time"

	"github.com/google/uuid"
)

// Disbandment — запись архива: один успешно запущенный бизнес-процесс
// расформирования.
type Disbandment struct {
	ID             string    `gorm:"primary_key" json:"id"`
	TelegramUserID int64     `gorm:"index;not null" json:"telegram_user_id"`
	CarrierBID     int64     `gorm:"column:carrier_b_id;not null" json:"carrier_b_id"`
	CarrierTitle   string    `json:"carrier_title"`
	Date           string    `json:"date"`
	WholeCarrier   bool      `gorm:"not null;default:false" json:"whole_carrier"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Disbandment) TableName() string {
	return "disbandments"
}

// GenerateID проставляет новый UUID, если он ещё не установлен.
func (d *Disbandment) GenerateID() {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
}
