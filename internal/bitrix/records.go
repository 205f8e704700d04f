// Package bitrix ходит в Битрикс двумя способами: читает сделки и
// пользователей напрямую из его базы и дёргает REST-вебхук для запуска
// бизнес-процесса.
package bitrix

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
)

// Пользовательские поля сделки в Битриксе.
const (
	// Список ID автомобилей на автовозе
	carsField = "UF_CRM_1663349303"
	// Сделка-операция, привязанная к автомобилю
	operationField = "UF_CRM_1695214894"
)

// Окно актуальности логина оператора: старше месяца — не считаем за
// работающего и не запускаем процесс от его имени.
const operatorLoginWindow = 30 * 24 * time.Hour

// Deal — проекция сделки Битрикса: только ID и название.
type Deal struct {
	ID    int64
	Title string
}

// Records читает сделки и пользователей из базы Битрикса. Только чтение.
type Records struct {
	db      *gorm.DB
	stageID string
}

// OpenRecords подключается к базе Битрикса. Таймауты задаются в DSN
// (timeout/readTimeout драйвера mysql).
func OpenRecords(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect bitrix db: %w", err)
	}
	return db, nil
}

func NewRecords(db *gorm.DB, stageID string) *Records {
	return &Records{db: db, stageID: stageID}
}

// AvailableCarriers возвращает сделки на стадии автовозов.
func (r *Records) AvailableCarriers() ([]Deal, error) {
	rows, err := r.db.Raw("SELECT ID, TITLE FROM b_crm_deal WHERE STAGE_ID = ?", r.stageID).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to list carrier deals: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		var d Deal
		if err := rows.Scan(&d.ID, &d.Title); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// CarIDs возвращает список ID автомобилей на автовозе из пользовательского
// поля сделки. Отсутствие ряда или пустое поле — пустой список, не ошибка.
func (r *Records) CarIDs(carrierID int64) ([]int64, error) {
	var blob sql.NullString
	row := r.db.Raw(
		"SELECT "+carsField+" FROM b_uts_crm_deal WHERE VALUE_ID = ?", carrierID,
	).Row()
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cars field: %w", err)
	}
	if !blob.Valid {
		return nil, nil
	}
	return parseIDList(blob.String), nil
}

// DealTitle возвращает название сделки; пустая строка — сделки нет.
func (r *Records) DealTitle(id int64) (string, error) {
	var title sql.NullString
	row := r.db.Raw("SELECT TITLE FROM b_crm_deal WHERE ID = ?", id).Row()
	if err := row.Scan(&title); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to read deal title: %w", err)
	}
	return title.String, nil
}

// DealIDByTitle ищет сделку по точному названию; ноль — не найдена.
func (r *Records) DealIDByTitle(title string) (int64, error) {
	var id int64
	row := r.db.Raw("SELECT ID FROM b_crm_deal WHERE TITLE = ?", title).Row()
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find deal by title: %w", err)
	}
	return id, nil
}

// CarOperationID возвращает ID сделки-операции автомобиля; ноль — поле
// пустое или ряда нет.
func (r *Records) CarOperationID(carID int64) (int64, error) {
	var val sql.NullString
	row := r.db.Raw(
		"SELECT "+operationField+" FROM b_uts_crm_deal WHERE VALUE_ID = ?", carID,
	).Row()
	if err := row.Scan(&val); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read operation field: %w", err)
	}
	if !val.Valid {
		return 0, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(val.String), 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

// OperatorIDByPhone ищет пользователя Битрикса по рабочему телефону среди
// заходивших за последние 30 дней, самый свежий логин первым. Ноль — не
// найден.
func (r *Records) OperatorIDByPhone(phone string) (int64, error) {
	since := time.Now().Add(-operatorLoginWindow)

	var id int64
	row := r.db.Raw(
		"SELECT ID FROM b_user WHERE WORK_PHONE = ? AND LAST_LOGIN >= ? ORDER BY LAST_LOGIN DESC LIMIT 1",
		phone, since,
	).Row()
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to find operator by phone: %w", err)
	}
	return id, nil
}
