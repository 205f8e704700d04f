// Package server поднимает HTTP-обвязку бота: приём вебхука Telegram и его
// регистрацию.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mitr-crm01/disband-cars-bot/internal/bot"
)

// WebhookSetter регистрирует URL вебхука у Telegram. *tgbotapi.BotAPI
// подходит как есть.
type WebhookSetter interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// New собирает роутер. Вебхук всегда отвечает 200 со структурой
// {status, error}: Telegram не должен ретраить апдейт из-за нашей ошибки.
func New(b *bot.Bot, api WebhookSetter, webhookURL string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.POST("/telegram/webhook", func(c *gin.Context) {
		// Паника обработчика не должна долететь до Telegram как 500
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("webhook handler panicked", "panic", rec)
				c.JSON(http.StatusOK, gin.H{"status": false, "error": fmt.Sprint(rec)})
			}
		}()

		var update tgbotapi.Update
		if err := c.ShouldBindJSON(&update); err != nil {
			slog.Error("failed to decode update", "error", err)
			c.JSON(http.StatusOK, gin.H{"status": false, "error": err.Error()})
			return
		}

		b.HandleUpdate(update)

		c.JSON(http.StatusOK, gin.H{"status": true, "error": nil})
	})

	r.GET("/telegram/webhook/set", func(c *gin.Context) {
		wh, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := api.Request(wh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, resp)
	})

	return r
}
