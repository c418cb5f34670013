// Package bot implements the Telegram administration bot. It is a pure
// HTTP client of the directory API: operators log in with their backend
// credentials and drive the same endpoints the web surface exposes, one
// wizard step at a time.
package bot

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/core/domain"
)

const maxOfferCategoryInput = domain.MaxOfferCategories

// Bot wires telego long polling to the wizard session machine.
type Bot struct {
	bot      *telego.Bot
	handler  *th.BotHandler
	api      *APIClient
	sessions *sessionStore
	log      zerolog.Logger
}

func New(token string, api *APIClient, log zerolog.Logger) (*Bot, error) {
	tg, err := telego.NewBot(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		bot:      tg,
		api:      api,
		sessions: newSessionStore(),
		log:      log,
	}, nil
}

// Run starts long polling and blocks until the handler stops. Cancelling ctx
// closes the update channel and ends the polling loop.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{Timeout: 10})
	if err != nil {
		return err
	}

	b.handler, err = th.NewBotHandler(b.bot, updates)
	if err != nil {
		return err
	}

	b.handler.HandleMessage(b.answerCommand, th.AnyCommand())
	b.handler.HandleCallbackQuery(b.answerCallback, th.AnyCallbackQueryWithMessage())
	b.handler.HandleMessage(b.answerMessage, th.AnyMessage())

	b.log.Info().Msg("telegram bot polling started")
	return b.handler.Start()
}

// Stop drains the handler. The polling loop itself stops when the Run
// context is cancelled.
func (b *Bot) Stop() {
	if b.handler != nil {
		if err := b.handler.Stop(); err != nil {
			b.log.Warn().Err(err).Msg("bot handler stop failed")
		}
	}
}

func (b *Bot) answerCommand(ctx *th.Context, message telego.Message) error {
	chatID := message.Chat.ID
	command, _, _ := tu.ParseCommand(message.Text)

	switch command {
	case "start", "help":
		b.sendMenu(ctx, chatID, "Hello <i>"+message.From.FirstName+"</i> 👋\n\nI manage the offer directory. Pick an action:")
	case "login":
		b.startFlow(ctx, chatID, loginStep{}, "Username?")
	case "cancel":
		b.sessions.Update(chatID, func(s *session) { s.Step = nil })
		b.send(ctx, chatID, "Cancelled.")
	case "newcity":
		b.beginAuthenticated(ctx, chatID, createCityStep{}, "City name?")
	case "newcategory":
		b.beginAuthenticated(ctx, chatID, createCategoryStep{}, "Category name?")
	case "newoffer":
		b.beginAuthenticated(ctx, chatID, createOfferStep{}, "Offer title?")
	case "newadmin":
		b.beginAdminSignup(ctx, chatID)
	default:
		b.send(ctx, chatID, "❗ Unknown command. Try /help.")
	}
	return nil
}

func (b *Bot) answerCallback(ctx *th.Context, query telego.CallbackQuery) error {
	chatID := query.Message.GetChat().ID

	switch query.Data {
	case "login":
		b.startFlow(ctx, chatID, loginStep{}, "Username?")
	case "new_city":
		b.beginAuthenticated(ctx, chatID, createCityStep{}, "City name?")
	case "new_category":
		b.beginAuthenticated(ctx, chatID, createCategoryStep{}, "Category name?")
	case "new_offer":
		b.beginAuthenticated(ctx, chatID, createOfferStep{}, "Offer title?")
	case "new_admin":
		b.beginAdminSignup(ctx, chatID)
	default:
		b.answerQuery(ctx, query.ID, "❗ Unknown action")
		return nil
	}
	b.answerQuery(ctx, query.ID, "")
	return nil
}

func (b *Bot) answerMessage(ctx *th.Context, message telego.Message) error {
	b.advanceWizard(ctx, message.Chat.ID, message.Text)
	return nil
}

// startFlow replaces whatever step was in flight with a fresh one.
func (b *Bot) startFlow(ctx context.Context, chatID int64, st step, prompt string) {
	b.sessions.Update(chatID, func(s *session) { s.Step = st })
	b.send(ctx, chatID, prompt)
}

// beginAuthenticated starts a flow only when the chat holds a token.
func (b *Bot) beginAuthenticated(ctx context.Context, chatID int64, st step, prompt string) {
	if b.sessions.Snapshot(chatID).Token == "" {
		b.send(ctx, chatID, "Please /login first.")
		return
	}
	b.startFlow(ctx, chatID, st, prompt)
}

// beginAdminSignup additionally requires the superadmin role, checked
// against the backend so a stale session cannot sneak past.
func (b *Bot) beginAdminSignup(ctx context.Context, chatID int64) {
	sess := b.sessions.Snapshot(chatID)
	if sess.Token == "" {
		b.send(ctx, chatID, "Please /login first.")
		return
	}

	me, err := b.api.Me(ctx, sess.Token)
	if err != nil {
		b.sendAPIError(ctx, chatID, err)
		return
	}
	if me.Role != string(domain.RoleSuperadmin) {
		b.send(ctx, chatID, "❌ Only a superadmin can create admins.")
		return
	}
	b.startFlow(ctx, chatID, createAdminStep{}, "New admin username?")
}

// advanceWizard feeds a plain-text answer into whatever step is in flight.
func (b *Bot) advanceWizard(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	sess := b.sessions.Snapshot(chatID)
	switch st := sess.Step.(type) {
	case nil:
		b.send(ctx, chatID, "Nothing in progress. Try /help.")
	case loginStep:
		b.advanceLogin(ctx, chatID, st, text)
	case createCityStep:
		b.finishCity(ctx, chatID, sess.Token, text)
	case createCategoryStep:
		b.advanceCategory(ctx, chatID, sess.Token, st, text)
	case createOfferStep:
		b.advanceOffer(ctx, chatID, sess.Token, st, text)
	case createAdminStep:
		b.advanceAdmin(ctx, chatID, sess.Token, st, text)
	}
}

func (b *Bot) advanceLogin(ctx context.Context, chatID int64, st loginStep, text string) {
	if st.Username == "" {
		st.Username = text
		b.sessions.Update(chatID, func(s *session) { s.Step = st })
		b.send(ctx, chatID, "Password?")
		return
	}

	token, err := b.api.Login(ctx, st.Username, text)
	if err != nil {
		b.sessions.Update(chatID, func(s *session) { s.Step = nil })
		b.sendAPIError(ctx, chatID, err)
		return
	}

	me, err := b.api.Me(ctx, token)
	if err != nil {
		b.sessions.Update(chatID, func(s *session) { s.Step = nil })
		b.sendAPIError(ctx, chatID, err)
		return
	}

	b.sessions.Update(chatID, func(s *session) {
		s.Token = token
		s.Role = me.Role
		s.Step = nil
	})
	b.sendMenu(ctx, chatID, "✅ Logged in as <b>"+me.Username+"</b> ("+me.Role+"). Pick an action:")
}

func (b *Bot) finishCity(ctx context.Context, chatID int64, token, name string) {
	b.sessions.Update(chatID, func(s *session) { s.Step = nil })
	if err := b.api.CreateCity(ctx, token, name); err != nil {
		b.sendAPIError(ctx, chatID, err)
		return
	}
	b.send(ctx, chatID, "✅ City <b>"+name+"</b> created.")
}

func (b *Bot) advanceCategory(ctx context.Context, chatID int64, token string, st createCategoryStep, text string) {
	if st.Name == "" {
		st.Name = text
		b.sessions.Update(chatID, func(s *session) { s.Step = st })
		b.send(ctx, chatID, "Image URL?")
		return
	}

	b.sessions.Update(chatID, func(s *session) { s.Step = nil })
	if err := b.api.CreateCategory(ctx, token, st.Name, text); err != nil {
		b.sendAPIError(ctx, chatID, err)
		return
	}
	b.send(ctx, chatID, "✅ Category <b>"+st.Name+"</b> created.")
}

// Prompts for the create-offer flow, indexed by how many answers have
// already been collected.
var offerPrompts = []string{
	"Description? (send - for none)",
	"Background image URL?",
	"Company logo URL?",
	"Company name?",
	"City ids? (comma-separated)",
	"Category ids? (comma-separated, at most 2, send - for none)",
}

func (b *Bot) advanceOffer(ctx context.Context, chatID int64, token string, st createOfferStep, text string) {
	switch st.Stage {
	case 0:
		st.Draft.Title = text
	case 1:
		if text != "-" {
			st.Draft.Description = text
		}
	case 2:
		st.Draft.BackgroundImageURL = text
	case 3:
		st.Draft.CompanyLogoURL = text
	case 4:
		st.Draft.CompanyName = text
	case 5:
		st.Draft.CityIDs = splitIDs(text)
		if len(st.Draft.CityIDs) == 0 {
			b.send(ctx, chatID, "❗ At least one city id is required. City ids?")
			return
		}
	case 6:
		if text != "-" {
			st.Draft.CategoryIDs = splitIDs(text)
		}
		if len(st.Draft.CategoryIDs) > maxOfferCategoryInput {
			b.send(ctx, chatID, "❗ An offer can have at most 2 categories. Category ids?")
			return
		}

		b.sessions.Update(chatID, func(s *session) { s.Step = nil })
		if err := b.api.CreateOffer(ctx, token, st.Draft); err != nil {
			b.sendAPIError(ctx, chatID, err)
			return
		}
		b.send(ctx, chatID, "✅ Offer <b>"+st.Draft.Title+"</b> created.")
		return
	}

	st.Stage++
	b.sessions.Update(chatID, func(s *session) { s.Step = st })
	b.send(ctx, chatID, offerPrompts[st.Stage-1])
}

func (b *Bot) advanceAdmin(ctx context.Context, chatID int64, token string, st createAdminStep, text string) {
	if st.Username == "" {
		st.Username = text
		b.sessions.Update(chatID, func(s *session) { s.Step = st })
		b.send(ctx, chatID, "New admin password?")
		return
	}

	b.sessions.Update(chatID, func(s *session) { s.Step = nil })
	user, err := b.api.Signup(ctx, token, st.Username, text)
	if err != nil {
		b.sendAPIError(ctx, chatID, err)
		return
	}
	b.send(ctx, chatID, "✅ Created <b>"+user.Username+"</b> with role "+user.Role+".")
}

func splitIDs(text string) []string {
	var ids []string
	for _, part := range strings.Split(text, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *Bot) sendMenu(ctx context.Context, chatID int64, msg string) {
	keyboard := tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🔑 Login").WithCallbackData("login"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🏙 New City").WithCallbackData("new_city"),
			tu.InlineKeyboardButton("🗂 New Category").WithCallbackData("new_category"),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("📣 New Offer").WithCallbackData("new_offer"),
			tu.InlineKeyboardButton("👤 New Admin").WithCallbackData("new_admin"),
		),
	)
	b.send(ctx, chatID, msg, keyboard)
}

func (b *Bot) send(ctx context.Context, chatID int64, msg string, replyMarkup ...telego.ReplyMarkup) {
	params := telego.SendMessageParams{
		ChatID:    tu.ID(chatID),
		Text:      msg,
		ParseMode: "HTML",
	}
	if len(replyMarkup) > 0 {
		params.ReplyMarkup = replyMarkup[0]
	}
	if _, err := b.bot.SendMessage(ctx, &params); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
	}
}

func (b *Bot) answerQuery(ctx context.Context, queryID, text string) {
	params := telego.AnswerCallbackQueryParams{CallbackQueryID: queryID, Text: text}
	if err := b.bot.AnswerCallbackQuery(ctx, &params); err != nil {
		b.log.Warn().Err(err).Msg("telegram callback answer failed")
	}
}

func (b *Bot) sendAPIError(ctx context.Context, chatID int64, err error) {
	if apiErr, ok := err.(*APIError); ok {
		b.send(ctx, chatID, "❌ "+apiErr.Detail)
		return
	}
	b.log.Warn().Err(err).Msg("backend request failed")
	b.send(ctx, chatID, "❌ Something went wrong!")
}
