package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cooknet/internal/caption"
	"cooknet/internal/dialogue"
	"cooknet/internal/store"
)

const (
	replyWait            = "⏳ Подожди немного…"
	replySendPhoto       = "📷 Пришли фото блюда."
	replySendTitle       = "Отлично! Теперь пришли название блюда."
	replySendDescription = "Теперь пришли описание блюда 📝"
	replyEmptyTitle      = "Название не может быть пустым. Пришли название блюда."
	replyEmptyDesc       = "Описание не может быть пустым. Пришли описание блюда."
	replyNeedPhoto       = "Жду фото блюда. Пришли фото или /cancel."
	replyCancelled       = "Добавление рецепта отменено."
	replyNothingToCancel = "Нечего отменять."
	replyExpired         = "⌛ Сессия истекла, начни заново."
	replyStoreFailure    = "❌ Не удалось сохранить рецепт, попробуй позже."
)

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return fmt.Sprintf("id%d", u.ID)
}

func (b *Bot) upsertSender(ctx context.Context, u *tgbotapi.User) {
	key := strconv.FormatInt(u.ID, 10)
	if _, err := b.store.UpsertUser(ctx, key, displayName(u)); err != nil {
		b.log.Error().Err(err).Int64("user_id", u.ID).Msg("failed to upsert user")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}
	b.handleText(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.sendWithKeyboard(chatID, "👋 Привет! Это CookNet AI 🍳\nОтправь фото продуктов — я предложу рецепты!")
	case "ping":
		b.sendMessage(chatID, "✅ Бот активен!")
	case "cancel":
		res := b.dialogs.Advance(userID, dialogue.Event{Kind: dialogue.EventCancel})
		if res.Outcome == dialogue.OutcomeCancelled {
			b.sendWithKeyboard(chatID, replyCancelled)
		} else {
			b.sendMessage(chatID, replyNothingToCancel)
		}
	case "add":
		b.startDialogue(userID, chatID)
	case "invite":
		b.handleInvite(ctx, msg)
	case "top":
		b.handleTop(ctx, userID, chatID)
	default:
		b.sendMessage(chatID, "Не знаю такую команду. Попробуй /start.")
	}
}

func (b *Bot) startDialogue(userID, chatID int64) {
	if !b.gate.AllowID(userID) {
		b.sendMessage(chatID, replyWait)
		return
	}
	b.dialogs.Advance(userID, dialogue.Event{Kind: dialogue.EventStart})
	b.sendMessage(chatID, replySendPhoto)
}

func (b *Bot) handleInvite(ctx context.Context, msg *tgbotapi.Message) {
	inv, err := b.store.GetOrCreateInvite(ctx, displayName(msg.From))
	if err != nil {
		b.log.Error().Err(err).Msg("failed to get invite")
		b.sendMessage(msg.Chat.ID, "❌ Не получилось создать приглашение, попробуй позже.")
		return
	}
	b.sendMessage(msg.Chat.ID, "🔗 Твоя ссылка-приглашение:\n"+b.siteURL+"/invite/"+inv.Code)
}

func (b *Bot) handleTop(ctx context.Context, userID, chatID int64) {
	if !b.gate.AllowID(userID) {
		b.sendMessage(chatID, replyWait)
		return
	}
	recipes, err := b.store.TopRecipes(ctx, 10)
	if err != nil {
		b.log.Error().Err(err).Msg("failed to load top recipes")
		b.sendMessage(chatID, "❌ Не получилось загрузить топ, попробуй позже.")
		return
	}
	if len(recipes) == 0 {
		b.sendWithKeyboard(chatID, "Пока нет ни одного рецепта. Добавь первый!")
		return
	}
	var sb strings.Builder
	sb.WriteString("🏆 Топ рецептов:\n")
	for i, r := range recipes {
		fmt.Fprintf(&sb, "%d. %s — %d ❤️\n", i+1, r.Title, r.Likes)
	}
	b.sendWithKeyboard(chatID, sb.String())
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !b.gate.AllowID(userID) {
		b.sendMessage(chatID, replyWait)
		return
	}

	// Largest size last. URL resolution is best-effort: the file id alone
	// is enough to keep the submission going.
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	fileURL, err := b.files.FileURL(fileID)
	if err != nil {
		b.log.Warn().Err(err).Str("file_id", fileID).Msg("failed to resolve photo URL")
		fileURL = ""
	}

	res := b.dialogs.Advance(userID, dialogue.Event{Kind: dialogue.EventPhoto, FileID: fileID, URL: fileURL})
	switch res.Outcome {
	case dialogue.OutcomePhotoAccepted:
		b.sendMessage(chatID, replySendTitle)
	case dialogue.OutcomeRepromptTitle:
		b.sendMessage(chatID, replyEmptyTitle)
	case dialogue.OutcomeRepromptDescription:
		b.sendMessage(chatID, replyEmptyDesc)
	case dialogue.OutcomeNone:
		if res.Expired {
			b.sendMessage(chatID, replyExpired)
			return
		}
		b.analyzePhoto(ctx, chatID, fileURL)
	}
}

// analyzePhoto is the AI camera: outside a submission, a photo is treated as
// ingredients to turn into recipe suggestions.
func (b *Bot) analyzePhoto(ctx context.Context, chatID int64, fileURL string) {
	if fileURL == "" {
		b.sendMessage(chatID, "❌ Не удалось получить фото, попробуй ещё раз.")
		return
	}
	b.sendMessage(chatID, "🔍 Анализирую фото, подожди пару секунд...")

	cctx, cancel := context.WithTimeout(ctx, b.captionTimeout)
	defer cancel()
	text, err := b.captioner.SuggestRecipes(cctx, fileURL)
	if err != nil {
		b.log.Error().Err(err).Msg("photo analysis failed")
		b.sendWithKeyboard(chatID, "❌ Не получилось проанализировать фото, попробуй позже.")
		return
	}
	b.sendWithKeyboard(chatID, "🍳 "+text)
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	// Description submission is rate-gated like the other dialogue writes.
	if b.dialogs.Stage(userID) == dialogue.StageDescription && !b.gate.AllowID(userID) {
		b.sendMessage(chatID, replyWait)
		return
	}

	res := b.dialogs.Advance(userID, dialogue.Event{Kind: dialogue.EventText, Text: msg.Text})
	switch res.Outcome {
	case dialogue.OutcomeTitleAccepted:
		b.sendMessage(chatID, replySendDescription)
	case dialogue.OutcomeRepromptTitle:
		b.sendMessage(chatID, replyEmptyTitle)
	case dialogue.OutcomeRepromptDescription:
		b.sendMessage(chatID, replyEmptyDesc)
	case dialogue.OutcomeRepromptPhoto:
		b.sendMessage(chatID, replyNeedPhoto)
	case dialogue.OutcomeCompleted:
		b.commitRecipe(ctx, chatID, displayName(msg.From), res.Draft)
	case dialogue.OutcomeNone:
		if res.Expired {
			b.sendMessage(chatID, replyExpired)
			return
		}
		b.sendWithKeyboard(chatID, "Отправь фото продуктов или выбери действие:")
	}
}

// commitRecipe finishes a completed dialogue: caption the recipe (falling
// back locally on collaborator failure) and write it to the store. Only a
// failed store write is surfaced as an error.
func (b *Bot) commitRecipe(ctx context.Context, chatID int64, username string, d dialogue.Draft) {
	text := b.captionOrFallback(ctx, d.Title, d.Description)

	r := &store.Recipe{
		Username:    username,
		Title:       d.Title,
		Description: d.Description,
		PhotoFileID: d.PhotoFileID,
		PhotoURL:    d.PhotoURL,
		Caption:     text,
	}
	if err := b.store.CreateRecipe(ctx, r); err != nil {
		b.log.Error().Err(err).Str("title", d.Title).Msg("failed to store recipe")
		b.sendMessage(chatID, replyStoreFailure)
		return
	}
	reply := fmt.Sprintf("✅ Рецепт «%s» сохранён!\n\n%s", r.Title, r.Caption)
	if r.PhotoFileID != "" {
		b.sendPhotoWithCaption(chatID, r.PhotoFileID, reply)
		return
	}
	b.sendWithKeyboard(chatID, reply)
}

func (b *Bot) captionOrFallback(ctx context.Context, title, description string) string {
	cctx, cancel := context.WithTimeout(ctx, b.captionTimeout)
	defer cancel()
	text, err := b.captioner.Caption(cctx, title, description)
	if err != nil || strings.TrimSpace(text) == "" {
		b.log.Warn().Err(err).Msg("captioning failed, using local fallback")
		return caption.Fallback(title, description)
	}
	return text
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID

	switch cb.Data {
	case callbackCamera:
		b.sendMessage(chatID, "📸 Отправь фото ингредиентов — я подскажу, что можно приготовить!")
	case callbackAdd:
		b.startDialogue(userID, chatID)
	case callbackTop:
		b.handleTop(ctx, userID, chatID)
	}
}
