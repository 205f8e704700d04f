// Package bot содержит машину состояний диалога расформирования: диспетчер,
// обработчики состояний и клавиатуры.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mitr-crm01/disband-cars-bot/internal/bitrix"
	"github.com/mitr-crm01/disband-cars-bot/internal/model"
	"github.com/mitr-crm01/disband-cars-bot/internal/repository"
	"github.com/mitr-crm01/disband-cars-bot/internal/state"
)

// Подписи кнопок. Ввод пользователя сверяется с ними дословно, никакого
// разбора свободного текста здесь нет.
const (
	btnAvailableCarriers = "📋 Доступные автовозы"
	btnArchive           = "🗄 Архив расформирований"
	btnBack              = "Назад"
	btnDisbandAll        = "Расформировать всё"
	btnDisbandCHLS       = "Расформировать на ЧЛС"
	btnConfirm           = "Подтвердить"
	btnShareContact      = "🤙 Поделиться номером телефона"
)

// Сделки-автовозы отличаются от прочих сделок префиксом названия.
const carrierTitlePrefix = "Автовоз "

const (
	msgAccessPending  = "Скоро предоставят доступ"
	msgMissButtons    = "Не промахивайся по кнопкам!"
	msgChooseCarrier  = "Выбери автовоз который надо расформировать"
	msgBackToMain     = "Вы вернулись в главное меню"
	msgChooseMonth    = "Выберите сегодняшний месяц:"
	msgFailure        = "Что-то пошло не так! Обратитесь к руководству"
	msgDisbandedAll   = "Автовоз успешно расформирован!"
	msgDisbandedCar   = "Автомобиль успешно расформирован на ЧЛС!"
	msgPhoneConfirmed = "✅ Ваш номер телефона подтверждён\nСкоро вам предоставят доступ до функций бота"
	msgNotYourPhone   = "⚠️ Это не ваш номер телефона!\nНажмите на кнопку ниже чтобы поделиться своим номером телефона"
)

// Sender отправляет сообщения в Telegram. *tgbotapi.BotAPI подходит как есть.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RecordsProvider читает сделки и пользователей Битрикса.
type RecordsProvider interface {
	AvailableCarriers() ([]bitrix.Deal, error)
	CarIDs(carrierID int64) ([]int64, error)
	DealTitle(id int64) (string, error)
	DealIDByTitle(title string) (int64, error)
	CarOperationID(carID int64) (int64, error)
	OperatorIDByPhone(phone string) (int64, error)
}

// WorkflowStarter запускает бизнес-процесс расформирования.
type WorkflowStarter interface {
	Start(ctx context.Context, dealID, operatorID int64, date, chls string) error
}

type handlerFunc func(user *model.TelegramUser, st *model.UserState, text string)

type Bot struct {
	api      Sender
	store    *repository.Store
	records  RecordsProvider
	workflow WorkflowStarter
	locks    *keyedMutex
	handlers map[string]handlerFunc
}

func NewBot(api Sender, store *repository.Store, records RecordsProvider, workflow WorkflowStarter) *Bot {
	b := &Bot{
		api:      api,
		store:    store,
		records:  records,
		workflow: workflow,
		locks:    newKeyedMutex(),
	}

	b.handlers = map[string]handlerFunc{
		state.Initial:            b.handleInitial,
		state.DisbandmentArchive: b.handleDisbandmentArchive,
		state.AvailableCarriers:  b.handleAvailableCarriers,
		state.SelectedCarriers:   b.handleSelectedCarriers,
		state.SelectedCar:        b.handleSelectedCar,
		state.AcceptDisbandCar:   b.handleAcceptDisbandCar,
		state.AvailableMonth:     b.handleAvailableMonth,
		state.SelectedMonth:      b.handleSelectedMonth,
		state.SelectedNumber:     b.handleSelectedNumber,
	}

	return b
}

// HandleUpdate — точка входа для одного апдейта Telegram. Обработка по
// одному чату строго последовательна.
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	unlock := b.locks.Lock(msg.From.ID)
	defer unlock()

	switch {
	case msg.Contact != nil:
		b.handleContact(msg)
	case msg.IsCommand():
		b.handleCommand(msg)
	case msg.Text != "":
		b.handleText(msg)
	}
}

// handleText — диспетчер машины состояний: выбирает обработчик по базовому
// имени верхнего токена стека.
func (b *Bot) handleText(msg *tgbotapi.Message) {
	user, st, err := b.store.Load(msg.From.ID, msg.From.FirstName)
	if err != nil {
		slog.Error("failed to load conversation", "chat", msg.From.ID, "error", err)
		return
	}

	if !st.IsAllowed || user.PhoneNumber == "" {
		b.sendText(user.TelegramID, msgAccessPending)
		return
	}

	base := state.Base(st.Current())
	handler, ok := b.handlers[base]
	if !ok {
		// Неизвестное состояние молча игнорируем
		slog.Warn("unknown conversation state", "chat", user.TelegramID, "state", base)
		return
	}

	handler(user, st, msg.Text)
}

func (b *Bot) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("failed to send message", "chat", chatID, "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(chatID, text, nil)
}

// sendMainMenu показывает главное меню с произвольным текстом.
func (b *Bot) sendMainMenu(chatID int64, text string) {
	b.send(chatID, text, mainMenuKeyboard())
}
