package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitr-crm01/disband-cars-bot/internal/model"
)

var months = []string{
	"1 Январь", "2 Февраль", "3 Март", "4 Апрель", "5 Май", "6 Июнь",
	"7 Июль", "8 Август", "9 Сентябрь", "10 Октябрь", "11 Ноябрь", "12 Декабрь",
}

func monthLabels() []string {
	return append([]string{}, months...)
}

// parseMonthLabel достаёт номер месяца из подписи кнопки вида "6 Июнь".
func parseMonthLabel(label string) (int, bool) {
	parts := strings.Fields(label)
	if len(parts) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 1 || n > 12 {
		return 0, false
	}
	return n, true
}

// daysIn возвращает число дней в месяце с учётом високосного года.
func daysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dayLabels(month, year int) []string {
	n := daysIn(month, year)
	days := make([]string, 0, n)
	for d := 1; d <= n; d++ {
		days = append(days, strconv.Itoa(d))
	}
	return days
}

// formatDate собирает дату расформирования в формате DD.MM.YYYY.
func formatDate(day, month, year int) string {
	return fmt.Sprintf("%02d.%02d.%04d", day, month, year)
}

const archiveLimit = 10

// archiveText собирает текст экрана архива: последние расформирования
// пользователя.
func (b *Bot) archiveText(user *model.TelegramUser) (string, error) {
	recent, err := b.store.RecentDisbandments(user.ID, archiveLimit)
	if err != nil {
		return "", err
	}

	if len(recent) == 0 {
		return "Архив пуст", nil
	}

	var sb strings.Builder
	sb.WriteString("Архив расформирований:\n")
	for _, d := range recent {
		sb.WriteString("• ")
		sb.WriteString(d.CarrierTitle)
		if d.WholeCarrier {
			if d.Date != "" {
				sb.WriteString(" — ")
				sb.WriteString(d.Date)
			}
		} else {
			sb.WriteString(" — автомобиль на ЧЛС")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
