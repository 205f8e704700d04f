package state

import "strconv"

// Имена базовых состояний машины диалога.
const (
	DisbandmentArchive = "disbandment_archive"
	AvailableCarriers  = "available_carriers"
	SelectedCarriers   = "selected_carriers"
	SelectedCar        = "selected_car"
	AcceptDisbandCar   = "accept_disband_car"
	AvailableMonth     = "available_month"
	SelectedMonth      = "selected_month"
	SelectedNumber     = "selected_number"
)

// DisbandAllSelection — выбор пользователя, восстановленный из стека для
// расформирования всего автовоза.
type DisbandAllSelection struct {
	CarrierID int64
	Month     int
	Day       int
}

// DisbandCarSelection — выбор для расформирования одного автомобиля.
type DisbandCarSelection struct {
	CarrierID int64
	CarID     int64
}

// findPayload ищет в стеке первый токен с данным базовым именем и возвращает
// его полезную нагрузку.
func findPayload(tokens []string, base string) (string, bool) {
	for _, t := range tokens {
		if Base(t) != base {
			continue
		}
		return Payload(t)
	}
	return "", false
}

func findInt(tokens []string, base string) (int64, bool) {
	raw, ok := findPayload(tokens, base)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractDisbandAll восстанавливает из стека выбор автовоза, месяца и числа.
// Возвращает false, если стек не содержит всех трёх токенов в разборном
// виде — вызывающий в этом случае сбрасывает диалог, а не гадает.
func ExtractDisbandAll(tokens []string) (DisbandAllSelection, bool) {
	carrier, okC := findInt(tokens, SelectedCarriers)
	month, okM := findInt(tokens, SelectedMonth)
	day, okD := findInt(tokens, SelectedNumber)
	if !okC || !okM || !okD {
		return DisbandAllSelection{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return DisbandAllSelection{}, false
	}
	return DisbandAllSelection{CarrierID: carrier, Month: int(month), Day: int(day)}, true
}

// ExtractDisbandCar восстанавливает из стека выбор автовоза и автомобиля.
func ExtractDisbandCar(tokens []string) (DisbandCarSelection, bool) {
	carrier, okC := findInt(tokens, SelectedCarriers)
	car, okCar := findInt(tokens, SelectedCar)
	if !okC || !okCar {
		return DisbandCarSelection{}, false
	}
	return DisbandCarSelection{CarrierID: carrier, CarID: car}, true
}
