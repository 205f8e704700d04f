package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mitr-crm01/disband-cars-bot/internal/model"
	"github.com/mitr-crm01/disband-cars-bot/internal/state"
)

// Обработчики состояний. Каждый сначала проверяет "Назад", затем известные
// кнопки своего экрана; всё остальное — промах без смены состояния. Внешние
// чтения выполняются до записи стека: упавший запрос не оставляет
// полусделанный переход.

func (b *Bot) handleInitial(user *model.TelegramUser, st *model.UserState, text string) {
	switch text {
	case btnAvailableCarriers:
		labels, err := b.carrierLabels()
		if err != nil {
			slog.Error("failed to list carriers", "chat", user.TelegramID, "error", err)
			b.sendMainMenu(user.TelegramID, msgFailure)
			return
		}

		if err := b.store.PushState(st, state.AvailableCarriers); err != nil {
			slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
			return
		}
		b.send(user.TelegramID, msgChooseCarrier, menuKeyboard(append(labels, btnBack)...))

	case btnArchive:
		archive, err := b.archiveText(user)
		if err != nil {
			slog.Error("failed to read archive", "chat", user.TelegramID, "error", err)
			b.sendMainMenu(user.TelegramID, msgFailure)
			return
		}

		if err := b.store.PushState(st, state.DisbandmentArchive); err != nil {
			slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
			return
		}
		b.send(user.TelegramID, archive, menuKeyboard(btnBack))

	default:
		// В главном меню промах дополнительно перерисовывает меню
		b.sendMainMenu(user.TelegramID, msgMissButtons)
	}
}

func (b *Bot) handleDisbandmentArchive(user *model.TelegramUser, st *model.UserState, text string) {
	if text == btnBack {
		b.popToMainMenu(user, st)
		return
	}
	b.sendText(user.TelegramID, msgMissButtons)
}

func (b *Bot) handleAvailableCarriers(user *model.TelegramUser, st *model.UserState, text string) {
	if text == btnBack {
		b.popToMainMenu(user, st)
		return
	}

	carrier, err := b.store.CarrierByTitle(carrierTitlePrefix + text)
	if err != nil {
		slog.Error("failed to resolve carrier", "chat", user.TelegramID, "error", err)
		b.failAndReset(user, st)
		return
	}
	if carrier == nil {
		b.sendText(user.TelegramID, msgMissButtons)
		return
	}

	cars, err := b.carLabels(carrier.BID)
	if err != nil {
		slog.Error("failed to list cars", "chat", user.TelegramID, "carrier", carrier.BID, "error", err)
		b.failAndReset(user, st)
		return
	}

	token := fmt.Sprintf("%s-%d", state.SelectedCarriers, carrier.BID)
	if err := b.store.PushState(st, token); err != nil {
		slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
		return
	}

	b.send(user.TelegramID,
		fmt.Sprintf("Выбран %s\nАвтомобили на данном автовозе:", text),
		carsKeyboard(cars))
}

func (b *Bot) handleSelectedCarriers(user *model.TelegramUser, st *model.UserState, text string) {
	switch text {
	case btnBack:
		labels, err := b.carrierLabels()
		if err != nil {
			slog.Error("failed to list carriers", "chat", user.TelegramID, "error", err)
			b.failAndReset(user, st)
			return
		}
		if err := b.store.PopState(st); err != nil {
			slog.Error("failed to pop state", "chat", user.TelegramID, "error", err)
			return
		}
		b.send(user.TelegramID, msgChooseCarrier, menuKeyboard(append(labels, btnBack)...))

	case btnDisbandAll:
		if err := b.store.PushState(st, state.AvailableMonth); err != nil {
			slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
			return
		}
		b.send(user.TelegramID, msgChooseMonth, menuKeyboard(append(monthLabels(), btnBack)...))

	default:
		carID, err := b.records.DealIDByTitle(text)
		if err != nil {
			slog.Error("failed to resolve car deal", "chat", user.TelegramID, "error", err)
			b.failAndReset(user, st)
			return
		}
		if carID == 0 {
			b.sendText(user.TelegramID, msgMissButtons)
			return
		}

		token := fmt.Sprintf("%s-%d", state.SelectedCar, carID)
		if err := b.store.PushState(st, token); err != nil {
			slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
			return
		}
		b.send(user.TelegramID,
			fmt.Sprintf("Вы выбрали %s", text),
			menuKeyboard(btnDisbandCHLS, btnBack))
	}
}

func (b *Bot) handleSelectedCar(user *model.TelegramUser, st *model.UserState, text string) {
	switch text {
	case btnBack:
		if err := b.store.PopState(st); err != nil {
			slog.Error("failed to pop state", "chat", user.TelegramID, "error", err)
			return
		}
		b.showCarList(user, st)

	case btnDisbandCHLS:
		payload, _ := state.Payload(st.Current())
		carID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			b.failAndReset(user, st)
			return
		}

		title, err := b.records.DealTitle(carID)
		if err != nil || title == "" {
			slog.Error("failed to read car title", "chat", user.TelegramID, "car", carID, "error", err)
			b.failAndReset(user, st)
			return
		}

		if err := b.store.PushState(st, state.AcceptDisbandCar); err != nil {
			slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
			return
		}
		b.send(user.TelegramID,
			fmt.Sprintf("Проверка вводных данных:\nВыбран %s\nРасформировать на ЧЛС?", title),
			menuKeyboard(btnConfirm, btnBack))

	default:
		b.sendText(user.TelegramID, msgMissButtons)
	}
}

func (b *Bot) handleAcceptDisbandCar(user *model.TelegramUser, st *model.UserState, text string) {
	switch text {
	case btnBack:
		if err := b.store.PopState(st); err != nil {
			slog.Error("failed to pop state", "chat", user.TelegramID, "error", err)
			return
		}
		// Вернулись на экран выбранного автомобиля
		payload, _ := state.Payload(st.Current())
		carID, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			b.failAndReset(user, st)
			return
		}
		title, err := b.records.DealTitle(carID)
		if err != nil || title == "" {
			b.failAndReset(user, st)
			return
		}
		b.send(user.TelegramID,
			fmt.Sprintf("Вы выбрали %s", title),
			menuKeyboard(btnDisbandCHLS, btnBack))

	case btnConfirm:
		b.confirmDisbandCar(user, st)

	default:
		b.sendText(user.TelegramID, msgMissButtons)
	}
}

func (b *Bot) handleAvailableMonth(user *model.TelegramUser, st *model.UserState, text string) {
	if text == btnBack {
		if err := b.store.PopState(st); err != nil {
			slog.Error("failed to pop state", "chat", user.TelegramID, "error", err)
			return
		}
		b.showCarList(user, st)
		return
	}

	month, ok := parseMonthLabel(text)
	if !ok {
		b.sendText(user.TelegramID, msgMissButtons)
		return
	}

	token := fmt.Sprintf("%s-%d", state.SelectedMonth, month)
	if err := b.store.PushState(st, token); err != nil {
		slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
		return
	}

	days := dayLabels(month, time.Now().Year())
	b.send(user.TelegramID,
		fmt.Sprintf("Выбран %s\nВыберите сегодняшнее число:", text),
		menuKeyboard(append(days, btnBack)...))
}

func (b *Bot) handleSelectedMonth(user *model.TelegramUser, st *model.UserState, text string) {
	if text == btnBack {
		if err := b.store.PopState(st); err != nil {
			slog.Error("failed to pop state", "chat", user.TelegramID, "error", err)
			return
		}
		b.send(user.TelegramID, msgChooseMonth, menuKeyboard(append(monthLabels(), btnBack)...))
		return
	}

	payload, _ := state.Payload(st.Current())
	month, err := strconv.Atoi(payload)
	if err != nil || month < 1 || month > 12 {
		b.failAndReset(user, st)
		return
	}

	day, err := strconv.Atoi(text)
	if err != nil || day < 1 || day > daysIn(month, time.Now().Year()) {
		b.sendText(user.TelegramID, msgMissButtons)
		return
	}

	token := fmt.Sprintf("%s-%d", state.SelectedNumber, day)
	if err := b.store.PushState(st, token); err != nil {
		slog.Error("failed to push state", "chat", user.TelegramID, "error", err)
		return
	}

	sel, ok := state.ExtractDisbandAll(st.Stack())
	if !ok {
		b.failAndReset(user, st)
		return
	}

	carrier, err := b.store.CarrierByBitrixID(sel.CarrierID)
	if err != nil || carrier == nil {
		slog.Error("carrier missing from cache", "chat", user.TelegramID, "carrier", sel.CarrierID, "error", err)
		b.failAndReset(user, st)
		return
	}

	b.send(user.TelegramID,
		fmt.Sprintf("Проверка вводных данных:\nВыбран %s\nУказанная дата расформирования: %s",
			carrier.BTitle, formatDate(sel.Day, sel.Month, time.Now().Year())),
		menuKeyboard(btnConfirm, btnBack))
}

func (b *Bot) handleSelectedNumber(user *model.TelegramUser, st *model.UserState, text string) {
	switch text {
	case btnBack:
		if err := b.store.PopState(st); err != nil {
			slog.Error("failed to pop state", "chat", user.TelegramID, "error", err)
			return
		}
		payload, _ := state.Payload(st.Current())
		month, err := strconv.Atoi(payload)
		if err != nil || month < 1 || month > 12 {
			b.failAndReset(user, st)
			return
		}
		days := dayLabels(month, time.Now().Year())
		b.send(user.TelegramID, "Выберите сегодняшнее число:", menuKeyboard(append(days, btnBack)...))

	case btnConfirm:
		b.confirmDisbandAll(user, st)

	default:
		b.sendText(user.TelegramID, msgMissButtons)
	}
}

// confirmDisbandAll — терминальное действие сценария "расформировать всё":
// восстановить выбор из стека, найти оператора, запустить процесс. Стек
// сбрасывается в любом исходе, чтобы пользователь не застрял, а повторная
// доставка того же апдейта нашла initial и не запустила процесс второй раз.
func (b *Bot) confirmDisbandAll(user *model.TelegramUser, st *model.UserState) {
	sel, ok := state.ExtractDisbandAll(st.Stack())
	if !ok {
		b.failAndReset(user, st)
		return
	}

	operator, err := b.records.OperatorIDByPhone(user.PhoneNumber)
	if err != nil {
		slog.Error("failed to resolve operator", "chat", user.TelegramID, "error", err)
		b.failAndReset(user, st)
		return
	}
	if operator == 0 {
		slog.Warn("no active bitrix operator for phone", "chat", user.TelegramID)
		b.failAndReset(user, st)
		return
	}

	date := formatDate(sel.Day, sel.Month, time.Now().Year())
	if err := b.workflow.Start(context.Background(), sel.CarrierID, operator, date, ""); err != nil {
		slog.Error("workflow start failed", "chat", user.TelegramID, "carrier", sel.CarrierID, "error", err)
		b.failAndReset(user, st)
		return
	}

	b.recordDisbandment(user, sel.CarrierID, date, true)

	if err := b.store.ResetState(st); err != nil {
		slog.Error("failed to reset state", "chat", user.TelegramID, "error", err)
	}
	b.sendMainMenu(user.TelegramID, msgDisbandedAll)
}

// confirmDisbandCar — терминальное действие сценария "расформировать один
// автомобиль на ЧЛС". Процесс запускается для сделки-операции автомобиля.
func (b *Bot) confirmDisbandCar(user *model.TelegramUser, st *model.UserState) {
	sel, ok := state.ExtractDisbandCar(st.Stack())
	if !ok {
		b.failAndReset(user, st)
		return
	}

	operationID, err := b.records.CarOperationID(sel.CarID)
	if err != nil {
		slog.Error("failed to read car operation", "chat", user.TelegramID, "car", sel.CarID, "error", err)
		b.failAndReset(user, st)
		return
	}
	if operationID == 0 {
		slog.Warn("car has no operation deal", "chat", user.TelegramID, "car", sel.CarID)
		b.failAndReset(user, st)
		return
	}

	operator, err := b.records.OperatorIDByPhone(user.PhoneNumber)
	if err != nil {
		slog.Error("failed to resolve operator", "chat", user.TelegramID, "error", err)
		b.failAndReset(user, st)
		return
	}
	if operator == 0 {
		slog.Warn("no active bitrix operator for phone", "chat", user.TelegramID)
		b.failAndReset(user, st)
		return
	}

	if err := b.workflow.Start(context.Background(), operationID, operator, "", "1"); err != nil {
		slog.Error("workflow start failed", "chat", user.TelegramID, "operation", operationID, "error", err)
		b.failAndReset(user, st)
		return
	}

	b.recordDisbandment(user, sel.CarrierID, "", false)

	if err := b.store.ResetState(st); err != nil {
		slog.Error("failed to reset state", "chat", user.TelegramID, "error", err)
	}
	b.sendMainMenu(user.TelegramID, msgDisbandedCar)
}

// recordDisbandment пишет запись в архив; ошибка архива не портит уже
// запущенный процесс, только логируется.
func (b *Bot) recordDisbandment(user *model.TelegramUser, carrierID int64, date string, whole bool) {
	title := ""
	if carrier, err := b.store.CarrierByBitrixID(carrierID); err == nil && carrier != nil {
		title = carrier.BTitle
	}

	d := &model.Disbandment{
		TelegramUserID: user.ID,
		CarrierBID:     carrierID,
		CarrierTitle:   title,
		Date:           date,
		WholeCarrier:   whole,
	}
	if err := b.store.CreateDisbandment(d); err != nil {
		slog.Error("failed to record disbandment", "chat", user.TelegramID, "error", err)
	}
}

// popToMainMenu — возврат из состояния прямо под главным меню.
func (b *Bot) popToMainMenu(user *model.TelegramUser, st *model.UserState) {
	if err := b.store.PopState(st); err != nil {
		slog.Error("failed to pop state", "chat", user.TelegramID, "error", err)
		return
	}
	b.sendMainMenu(user.TelegramID, msgBackToMain)
}

// showCarList перерисовывает список автомобилей автовоза, ID которого лежит
// в верхнем токене selected_carriers. Данные перечитываются из Битрикса:
// источник правды — хранилище, не прошлые сообщения.
func (b *Bot) showCarList(user *model.TelegramUser, st *model.UserState) {
	payload, _ := state.Payload(st.Current())
	carrierID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		b.failAndReset(user, st)
		return
	}

	carrier, err := b.store.CarrierByBitrixID(carrierID)
	if err != nil || carrier == nil {
		b.failAndReset(user, st)
		return
	}

	cars, err := b.carLabels(carrierID)
	if err != nil {
		slog.Error("failed to list cars", "chat", user.TelegramID, "carrier", carrierID, "error", err)
		b.failAndReset(user, st)
		return
	}

	b.send(user.TelegramID,
		fmt.Sprintf("Выбран %s\nАвтомобили на данном автовозе:", carrier.BTitle),
		carsKeyboard(cars))
}

// failAndReset — общий выход из любой ошибки обработчика: фиксированное
// сообщение и возврат в главное меню, чтобы диалог не повис.
func (b *Bot) failAndReset(user *model.TelegramUser, st *model.UserState) {
	if err := b.store.ResetState(st); err != nil {
		slog.Error("failed to reset state", "chat", user.TelegramID, "error", err)
	}
	b.sendMainMenu(user.TelegramID, msgFailure)
}

// carrierLabels возвращает подписи кнопок автовозов (без префикса названия)
// и попутно обновляет локальный кэш.
func (b *Bot) carrierLabels() ([]string, error) {
	deals, err := b.records.AvailableCarriers()
	if err != nil {
		return nil, err
	}

	var labels []string
	for _, d := range deals {
		if !strings.HasPrefix(d.Title, carrierTitlePrefix) {
			continue
		}
		labels = append(labels, strings.TrimPrefix(d.Title, carrierTitlePrefix))
		if err := b.store.UpsertCarrier(d.ID, d.Title); err != nil {
			slog.Error("failed to cache carrier", "carrier", d.ID, "error", err)
		}
	}
	return labels, nil
}

// carLabels возвращает названия автомобилей на автовозе. Автомобиль без
// сделки молча пропускается.
func (b *Bot) carLabels(carrierID int64) ([]string, error) {
	ids, err := b.records.CarIDs(carrierID)
	if err != nil {
		return nil, err
	}

	var cars []string
	for _, id := range ids {
		title, err := b.records.DealTitle(id)
		if err != nil {
			slog.Error("failed to read car deal", "car", id, "error", err)
			continue
		}
		if title == "" {
			continue
		}
		cars = append(cars, title)
	}
	return cars, nil
}

func carsKeyboard(cars []string) replyKeyboard {
	return menuKeyboard(append(append([]string{}, cars...), btnDisbandAll, btnBack)...)
}
