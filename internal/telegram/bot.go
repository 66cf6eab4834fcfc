// Package telegram is the chat front end: it dispatches inbound updates into
// the submission dialogue and the command handlers, and writes through the
// shared store.
package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"cooknet/internal/antispam"
	"cooknet/internal/caption"
	"cooknet/internal/dialogue"
	"cooknet/internal/store"
)

const updateQueueSize = 128

const (
	callbackCamera = "camera"
	callbackAdd    = "add"
	callbackTop    = "top"
)

type Bot struct {
	api   *tgbotapi.BotAPI
	s     sender
	files fileLinker

	store          *store.Store
	gate           *antispam.Gate
	dialogs        *dialogue.Manager
	captioner      caption.Client
	captionTimeout time.Duration
	siteURL        string

	// updates feeds Run in webhook mode; Enqueue never blocks the caller.
	updates chan tgbotapi.Update

	log zerolog.Logger
}

func New(
	botToken string,
	st *store.Store,
	gate *antispam.Gate,
	dialogs *dialogue.Manager,
	captioner caption.Client,
	captionTimeout time.Duration,
	siteURL string,
	logger zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	s := botAPISender{api: api}
	return &Bot{
		api:            api,
		s:              s,
		files:          s,
		store:          st,
		gate:           gate,
		dialogs:        dialogs,
		captioner:      captioner,
		captionTimeout: captionTimeout,
		siteURL:        siteURL,
		updates:        make(chan tgbotapi.Update, updateQueueSize),
		log:            logger.With().Str("component", "telegram").Logger(),
	}, nil
}

// StartPolling consumes updates via long polling until ctx is done.
func (b *Bot) StartPolling(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Run consumes updates enqueued by the webhook route until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-b.updates:
			b.handleUpdate(ctx, update)
		}
	}
}

// Enqueue hands a validated transport update to the dispatch goroutine. It
// never blocks: when the queue is full the update is dropped with a log so
// the webhook caller still gets a constant-time acknowledgment.
func (b *Bot) Enqueue(update tgbotapi.Update) bool {
	select {
	case b.updates <- update:
		return true
	default:
		b.log.Warn().Int("update_id", update.UpdateID).Msg("update queue full, dropping update")
		return false
	}
}

// RegisterWebhook points the transport at our web server.
func (b *Bot) RegisterWebhook(webhookURL string) error {
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return err
	}
	if _, err := b.api.Request(wh); err != nil {
		return err
	}
	b.log.Info().Str("url", webhookURL).Msg("webhook registered")
	return nil
}

// WebhookPath is the route the web server mounts for update intake. The
// token keeps the path unguessable.
func (b *Bot) WebhookPath() string {
	return "/webhook/" + b.api.Token
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil && update.Message.From != nil {
		b.upsertSender(ctx, update.Message.From)
		b.handleMessage(ctx, update.Message)
		return
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		b.upsertSender(ctx, update.CallbackQuery.From)
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.mainKeyboard()
	if _, err := b.s.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) sendPhotoWithCaption(chatID int64, fileID, text string) {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = text
	msg.ReplyMarkup = b.mainKeyboard()
	if _, err := b.s.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send photo")
	}
}

func (b *Bot) mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	siteLink := b.siteURL + "/recipes"
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📷 AI-Камера", callbackCamera),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить рецепт", callbackAdd),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏆 Топ недели", callbackTop),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🌐 Открыть сайт", siteLink),
		),
	)
}
