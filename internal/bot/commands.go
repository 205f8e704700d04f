package bot

import (
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mitr-crm01/disband-cars-bot/internal/model"
)

// Команды и событие "поделился контактом" идут мимо машины состояний.

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	}
}

// handleStart создаёт или обновляет профиль пользователя. Без номера
// телефона дальше не пускаем — просим поделиться контактом; с номером
// сбрасываем диалог в главное меню.
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	from := msg.From

	user := &model.TelegramUser{
		TelegramID:   from.ID,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		Username:     from.UserName,
		LanguageCode: from.LanguageCode,
	}
	if err := b.store.UpsertUser(user); err != nil {
		slog.Error("failed to upsert user", "chat", from.ID, "error", err)
		return
	}

	// Ряд состояния заводится вместе с пользователем
	_, st, err := b.store.Load(from.ID, from.FirstName)
	if err != nil {
		slog.Error("failed to load state", "chat", from.ID, "error", err)
		return
	}

	if user.PhoneNumber == "" {
		b.send(from.ID, user.FirstName+", поделитесь номером телефона:", contactKeyboard())
		return
	}

	if err := b.store.ResetState(st); err != nil {
		slog.Error("failed to reset state", "chat", from.ID, "error", err)
		return
	}
	b.sendMainMenu(from.ID, user.FirstName+", выберите опцию:")
}

// handleContact принимает номер телефона. Засчитывается только собственный
// контакт отправителя.
func (b *Bot) handleContact(msg *tgbotapi.Message) {
	contact := msg.Contact

	if contact.UserID != msg.From.ID {
		b.send(msg.From.ID, msgNotYourPhone, contactKeyboard())
		return
	}

	user, _, err := b.store.Load(msg.From.ID, msg.From.FirstName)
	if err != nil {
		slog.Error("failed to load user", "chat", msg.From.ID, "error", err)
		return
	}

	phone := contact.PhoneNumber
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	if err := b.store.SetPhoneNumber(user, phone); err != nil {
		slog.Error("failed to save phone", "chat", msg.From.ID, "error", err)
		return
	}

	b.send(msg.From.ID, msgPhoneConfirmed, mainMenuKeyboard())
}
