package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/cafe-bot/internal/business"
	"github.com/xaenox/cafe-bot/internal/catalog"
	"github.com/xaenox/cafe-bot/internal/chat"
	"github.com/xaenox/cafe-bot/internal/loyalty"
	"github.com/xaenox/cafe-bot/internal/models"
	"github.com/xaenox/cafe-bot/internal/session"
	"github.com/xaenox/cafe-bot/internal/upload"
	"go.uber.org/zap"
)

const historyLimit = 5

// botAPI is the part of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api      botAPI
	sessions *session.Manager
	panel    *business.Panel
	logger   *zap.Logger
	now      func() time.Time
}

func New(token string, debug bool, sessions *session.Manager, panel *business.Panel, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = debug
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	return newBot(api, sessions, panel, logger), nil
}

func newBot(api botAPI, sessions *session.Manager, panel *business.Panel, logger *zap.Logger) *Bot {
	return &Bot{
		api:      api,
		sessions: sessions,
		panel:    panel,
		logger:   logger,
		now:      time.Now,
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func visitorID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if len(message.Photo) > 0 || message.Document != nil {
		b.handleUpload(message)
		return
	}

	b.handleChat(ctx, message)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(message)
	case "menu":
		b.handleMenu(message)
	case "search":
		b.handleSearch(message)
	case "tag":
		b.handleTag(message)
	case "clear":
		b.handleClear(message)
	case "gallery":
		b.handleGallery(message)
	case "like":
		b.handleLike(message)
	case "hours":
		b.handleHours(message)
	case "points":
		b.handlePoints(message)
	case "spin":
		b.handleSpin(message)
	case "history":
		b.handleHistory(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	welcome := `Welcome to Artisan Café! ☕
Browse the menu, like photos from our gallery, spin the daily wheel and ask me anything.
Use /help to see all available commands.`
	b.sendMessage(message.Chat.ID, welcome)

	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	greeting, err := visitor.Chat.Start(ctx)
	if err != nil {
		b.logger.Error("Failed to start conversation",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		return
	}
	if greeting != nil {
		b.sendReply(message.Chat.ID, greeting)
	}
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/menu [coffee|food|dessert|all] - Show the menu
/search <text> - Search the menu (empty clears)
/tag <vegan|organic|gluten-free|signature|seasonal> - Toggle a tag filter
/clear - Clear all menu filters
/gallery [coffee|food|desserts|all] - Show the photo gallery
/like <photo id> - Like or unlike a photo
/hours - Opening hours and location
/points - Your loyalty points and rewards
/spin - Spin the daily wheel
/history - Your recent chat messages

Send a photo to share it with our community, or just ask me a question!`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleMenu(message *tgbotapi.Message) {
	visitor := b.sessions.Get(visitorID(message.Chat.ID))

	if arg := message.CommandArguments(); arg != "" {
		category, ok := catalog.ParseCategory(arg, catalog.MenuCategories)
		if !ok {
			b.sendMessage(message.Chat.ID, "Unknown category. Try coffee, food, dessert or all.")
			return
		}
		visitor.UpdateMenuFilter(func(s models.FilterState) models.FilterState {
			s.Category = category
			return s
		})
	}

	b.sendMenu(message.Chat.ID, visitor)
}

func (b *Bot) handleSearch(message *tgbotapi.Message) {
	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	term := strings.TrimSpace(message.CommandArguments())
	visitor.UpdateMenuFilter(func(s models.FilterState) models.FilterState {
		s.SearchTerm = term
		return s
	})
	b.sendMenu(message.Chat.ID, visitor)
}

func (b *Bot) handleTag(message *tgbotapi.Message) {
	tag, ok := catalog.ParseTag(message.CommandArguments(), catalog.MenuTags)
	if !ok {
		b.sendMessage(message.Chat.ID, "Unknown tag. Try vegan, organic, gluten-free, signature or seasonal.")
		return
	}

	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	visitor.UpdateMenuFilter(func(s models.FilterState) models.FilterState {
		return catalog.ToggleTag(s, tag)
	})
	b.sendMenu(message.Chat.ID, visitor)
}

func (b *Bot) handleClear(message *tgbotapi.Message) {
	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	visitor.UpdateMenuFilter(func(models.FilterState) models.FilterState {
		return catalog.DefaultFilter()
	})
	b.sendMenu(message.Chat.ID, visitor)
}

func (b *Bot) sendMenu(chatID int64, visitor *session.Visitor) {
	state := visitor.MenuFilter()
	b.sendMarkdown(chatID, formatMenu(catalog.Filter(catalog.Menu(), state), state))
}

func (b *Bot) handleGallery(message *tgbotapi.Message) {
	visitor := b.sessions.Get(visitorID(message.Chat.ID))

	if arg := message.CommandArguments(); arg != "" {
		category, ok := catalog.ParseCategory(arg, catalog.GalleryCategories)
		if !ok {
			b.sendMessage(message.Chat.ID, "Unknown category. Try coffee, food, desserts or all.")
			return
		}
		visitor.SetGalleryCategory(category)
	}

	b.sendMarkdown(message.Chat.ID, formatGallery(visitor.VisibleGallery(), visitor.Likes(), visitor.GalleryCategory()))
}

func (b *Bot) handleLike(message *tgbotapi.Message) {
	id := strings.TrimSpace(message.CommandArguments())
	if id == "" {
		b.sendMessage(message.Chat.ID, "Which photo? Use /like <photo id>, e.g. /like 1")
		return
	}

	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	photo, liked, err := visitor.ToggleLike(id)
	if errors.Is(err, catalog.ErrUnknownEntry) {
		b.sendMessage(message.Chat.ID, "There is no photo with that id. Use /gallery to see them.")
		return
	}

	count := catalog.LikeCount(photo, visitor.Likes())
	if liked {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("❤️ You liked %q (%d likes)", photo.Description, count))
	} else {
		b.sendMessage(message.Chat.ID, fmt.Sprintf("🤍 You unliked %q (%d likes)", photo.Description, count))
	}
}

func (b *Bot) handleHours(message *tgbotapi.Message) {
	b.sendMessage(message.Chat.ID, formatHours(b.panel, b.now()))
}

func (b *Bot) handlePoints(message *tgbotapi.Message) {
	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	b.sendMessage(message.Chat.ID, formatPoints(visitor.Loyalty.State(), b.now()))
}

func (b *Bot) handleSpin(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	visitor := b.sessions.Get(visitorID(chatID))

	err := visitor.Loyalty.Spin(b.now(), func(result models.SpinResult) {
		b.sendMessage(chatID, fmt.Sprintf("🎉 Congratulations! You won: %s\n+%d points, balance %d pts",
			result.Prize, result.Points, result.Balance))
	})
	switch {
	case errors.Is(err, loyalty.ErrAlreadySpinning):
		b.sendMessage(chatID, "The wheel is already spinning…")
	case errors.Is(err, loyalty.ErrSpinUnavailable):
		state := visitor.Loyalty.State()
		next := loyalty.NextSpinAt(state.LastSpin, b.now())
		b.sendMessage(chatID, fmt.Sprintf("Come back tomorrow! You can spin once every 24 hours (next spin in %s).",
			next.Sub(b.now()).Round(time.Minute)))
	case err != nil:
		b.logger.Error("Failed to spin wheel",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, the wheel is stuck. Please try again.")
	default:
		b.logger.Info("Wheel spin started", zap.Int64("chat_id", chatID))
		b.sendMessage(chatID, "🎡 Spinning...")
	}
}

func (b *Bot) handleUpload(message *tgbotapi.Message) {
	file := upload.File{MediaType: "image/jpeg"}
	if len(message.Photo) > 0 {
		largest := message.Photo[len(message.Photo)-1]
		file.Size = int64(largest.FileSize)
	} else {
		file.Name = message.Document.FileName
		file.MediaType = message.Document.MimeType
		file.Size = int64(message.Document.FileSize)
	}

	if err := upload.Validate(file); err != nil {
		var verr *upload.ValidationError
		if errors.As(err, &verr) {
			b.sendErrorMessage(message.Chat.ID, verr.Reason)
			return
		}
		b.logger.Error("Failed to validate upload",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't check your photo. Please try again.")
		return
	}

	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	balance, err := visitor.Loyalty.Earn("Photo Share")
	if err != nil {
		b.logger.Error("Failed to credit photo share", zap.Error(err))
	}
	b.sendMessage(message.Chat.ID, fmt.Sprintf(
		"📸 Thanks for sharing! Your photo looks great. +15 points for sharing (balance %d pts). Tag us with #ArtisanMoments!",
		balance))
}

func (b *Bot) handleChat(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if strings.TrimSpace(message.Text) == "" {
		return
	}
	visitor := b.sessions.Get(visitorID(chatID))

	// Visitors who skipped /start still get the greeting first.
	greeting, err := visitor.Chat.Start(ctx)
	if err != nil {
		b.logger.Error("Failed to start conversation",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	} else if greeting != nil {
		b.sendReply(chatID, greeting)
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("Failed to send typing action", zap.Error(err))
	}

	_, err = visitor.Chat.Send(ctx, message.Text, func(reply *models.ChatMessage) {
		b.sendReply(chatID, reply)
	})
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return
	case err != nil:
		b.logger.Error("Failed to send chat message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Sorry, I couldn't process your message. Please try again.")
	}
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	visitor := b.sessions.Get(visitorID(message.Chat.ID))
	messages, err := visitor.Chat.Transcript(ctx, historyLimit)
	if err != nil {
		b.logger.Error("Failed to get chat history",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your message history.")
		return
	}

	if len(messages) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any messages yet.")
		return
	}

	b.sendMarkdown(message.Chat.ID, formatHistory(messages))
}

// sendReply sends a bot chat message with its suggestions as a keyboard, so
// tapping a suggestion sends it as the next message.
func (b *Bot) sendReply(chatID int64, reply *models.ChatMessage) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if len(reply.Suggestions) > 0 {
		msg.ReplyMarkup = suggestionKeyboard(reply.Suggestions)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func suggestionKeyboard(suggestions []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(suggestions); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(suggestions[i]))
		if i+1 < len(suggestions) {
			row = append(row, tgbotapi.NewKeyboardButton(suggestions[i+1]))
		}
		rows = append(rows, row)
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	return keyboard
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send markdown message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
