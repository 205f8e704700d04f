// Запуск бота в режиме long polling — для локальной разработки, когда
// внешнего URL для вебхука нет.
package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mitr-crm01/disband-cars-bot/internal/bitrix"
	"github.com/mitr-crm01/disband-cars-bot/internal/bot"
	"github.com/mitr-crm01/disband-cars-bot/internal/config"
	"github.com/mitr-crm01/disband-cars-bot/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	localDB, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer localDB.Close()

	store := repository.New(localDB)
	if err := store.AutoMigrate(); err != nil {
		log.Fatal(err)
	}

	bitrixDB, err := bitrix.OpenRecords(cfg.BitrixDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer bitrixDB.Close()

	records := bitrix.NewRecords(bitrixDB, cfg.CarrierStageID)
	workflow := bitrix.NewWorkflowClient(cfg.BitrixWebhookURL, cfg.BitrixTemplateID)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatal(err)
	}

	b := bot.NewBot(api, store, records, workflow)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range api.GetUpdatesChan(u) {
		b.HandleUpdate(update)
	}
}
