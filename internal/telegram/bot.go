package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"meal-survey/internal/auth"
	"meal-survey/internal/catalog"
	"meal-survey/internal/config"
	"meal-survey/internal/metrics"
	"meal-survey/internal/submission"
	"meal-survey/internal/wizard"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sender is the subset of *tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// run is one chat's survey: its wizard and the guard around submitting it.
type run struct {
	mu        sync.Mutex
	wizard    *wizard.Controller
	submitter *submission.Submitter
}

// Bot renders the survey in Telegram and turns button presses into wizard
// intents.
type Bot struct {
	api       sender
	cfg       *config.Config
	auth      *auth.Registry
	transport submission.Transport
	recorder  submission.Recorder
	metrics   *metrics.Store
	variant   wizard.Variant
	log       *zap.Logger

	mu   sync.Mutex
	runs map[int64]*run
}

// NewBot initializes the Telegram Bot and sets the Webhook. transport may be
// nil when the survey backend is not configured; metricsStore may be nil.
func NewBot(
	cfg *config.Config,
	registry *auth.Registry,
	transport submission.Transport,
	metricsStore *metrics.Store,
	log *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("webhook set", zap.String("description", resp.Description))

	return newBot(api, cfg, registry, transport, metricsStore, log), nil
}

func newBot(api sender, cfg *config.Config, registry *auth.Registry, transport submission.Transport, metricsStore *metrics.Store, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bot{
		api:       api,
		cfg:       cfg,
		auth:      registry,
		transport: transport,
		metrics:   metricsStore,
		variant:   wizard.VariantFor(cfg.WizardPlanStep),
		log:       log,
		runs:      make(map[int64]*run),
	}
	// A nil *metrics.Store must not become a non-nil Recorder.
	if metricsStore != nil {
		b.recorder = metricsStore
	}
	registry.OnSignOut(b.dropRun)
	return b
}

// Variant reports whether new runs start with plan selection.
func (b *Bot) Variant() wizard.Variant { return b.variant }

// RegisterRoutes mounts the webhook and health endpoints.
func (b *Bot) RegisterRoutes(r gin.IRoutes) {
	r.POST("/webhook", gin.WrapF(b.HandleWebhook))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}

// HandleWebhook decodes a Telegram update and dispatches it.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.log.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	switch {
	case update.CallbackQuery != nil:
		go b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		go b.processMessage(update.Message)
	}
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := context.Background()
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "restart":
		b.handleRestart(ctx, chatID)
	case "signout":
		b.handleSignOut(ctx, chatID)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	default:
		b.reply(chatID, "Send /start to share your meal preferences, /restart to begin again or /signout to leave.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	provider := b.auth.ForChat(chatID)
	if provider.Loading() {
		b.reply(chatID, "⏳ Loading...")
		return
	}

	user := provider.CurrentUser(ctx)
	if user == nil {
		var err error
		user, err = provider.SignIn(ctx, identityOf(msg.From))
		if err != nil {
			b.log.Warn("sign in failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
			b.reply(chatID, "❌ "+signInMessage(err))
			return
		}
		b.log.Info("user signed in", zap.String("user_id", user.ID))
	}

	r := b.runFor(chatID)
	r.mu.Lock()
	text, kb := render(r, user)
	r.mu.Unlock()
	b.sendView(chatID, text, kb)
}

func (b *Bot) handleRestart(ctx context.Context, chatID int64) {
	user := b.auth.ForChat(chatID).CurrentUser(ctx)
	if user == nil {
		b.reply(chatID, "Please /start to sign in first.")
		return
	}
	r := b.runFor(chatID)
	r.mu.Lock()
	if r.submitter.Status() == submission.StatusSubmitting {
		r.mu.Unlock()
		b.reply(chatID, "⏳ Your survey is being submitted, please wait.")
		return
	}
	r.wizard.Restart()
	r.submitter.Reset()
	text, kb := render(r, user)
	r.mu.Unlock()
	b.sendView(chatID, text, kb)
}

func (b *Bot) handleSignOut(ctx context.Context, chatID int64) {
	if err := b.auth.ForChat(chatID).SignOut(ctx); err != nil {
		b.reply(chatID, "❌ "+err.Error())
		return
	}
	b.reply(chatID, "👋 Signed out. Send /start to sign in again.")
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	ctx := context.Background()
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	provider := b.auth.ForChat(chatID)
	if provider.Loading() {
		b.answer(query.ID, "Loading...", false)
		return
	}
	user := provider.CurrentUser(ctx)
	if user == nil {
		b.answer(query.ID, "Please send /start to sign in.", true)
		return
	}

	r := b.runFor(chatID)
	res := b.apply(ctx, r, user, query.Data, func() {
		b.answer(query.ID, "", false)
		b.edit(chatID, messageID, "⏳ *Submitting your survey...*", nil)
	})

	if !res.answered {
		b.answer(query.ID, res.notice, res.alert)
	}
	if res.record != nil {
		text, kb := renderSubmitted(res.record)
		b.edit(chatID, messageID, text, &kb)
		return
	}
	if res.unchanged {
		return
	}

	r.mu.Lock()
	text, kb := render(r, user)
	r.mu.Unlock()
	if res.errorText != "" {
		text = res.errorText + "\n\n" + text
	}
	b.edit(chatID, messageID, text, &kb)
}

// result is what applying one intent produced.
type result struct {
	notice    string // callback toast
	alert     bool   // show notice as a blocking alert
	answered  bool   // callback already answered
	unchanged bool   // nothing to re-render
	errorText string // shown above the re-rendered step
	record    *submission.Record
}

// apply runs a callback intent against a chat's survey. beforeSubmit is
// called once a submission is about to go out.
func (b *Bot) apply(ctx context.Context, r *run, user *auth.User, data string, beforeSubmit func()) result {
	action, arg, _ := strings.Cut(data, "|")

	r.mu.Lock()
	if r.submitter.Status() == submission.StatusSubmitting {
		r.mu.Unlock()
		return result{notice: "Your survey is being submitted, please wait.", unchanged: true}
	}

	switch action {
	case actionSubmit:
		return b.submit(ctx, r, user, beforeSubmit)
	case actionAgain:
		r.wizard.Restart()
		r.submitter.Reset()
		r.mu.Unlock()
		return result{}
	}
	defer r.mu.Unlock()

	if r.submitter.Status() == submission.StatusSubmitted {
		return result{notice: "Survey already submitted. Tap \"Submit another\" to start over.", unchanged: true}
	}

	switch action {
	case actionPlan:
		plan, err := catalog.ParsePlan(arg)
		if err == nil {
			err = r.wizard.ChoosePlan(plan)
		}
		if err != nil {
			return result{notice: err.Error(), unchanged: true}
		}
		return result{notice: "Plan: " + string(plan)}
	case actionOption:
		key, err := parseKeyArg(arg)
		if err != nil {
			return result{notice: err.Error(), unchanged: true}
		}
		slot, ok := r.wizard.Step().Slot()
		if !ok {
			return result{notice: wizard.ErrNotASlotStep.Error(), unchanged: true}
		}
		selected := !r.wizard.Selections().IsSelected(slot, key)
		if err := r.wizard.Toggle(key, selected); err != nil {
			return result{notice: err.Error(), unchanged: true}
		}
		return result{}
	case actionNext:
		if !r.wizard.Advance() {
			if r.wizard.Step() == wizard.StepPlan {
				return result{notice: "Please choose a plan first.", unchanged: true}
			}
			return result{unchanged: true}
		}
		return result{}
	case actionPrev:
		if !r.wizard.Retreat() {
			return result{unchanged: true}
		}
		return result{}
	}
	return result{notice: "Unknown action.", unchanged: true}
}

// submit is called with r.mu held. It claims the submitter before releasing
// the lock, so restarts are refused until the network call returns.
func (b *Bot) submit(ctx context.Context, r *run, user *auth.User, beforeSubmit func()) result {
	if b.transport == nil {
		r.mu.Unlock()
		b.log.Error("survey backend not configured")
		return result{notice: "⚠️ Submissions are not configured. Please contact support.", alert: true, unchanged: true}
	}
	if !r.wizard.IsTerminal() {
		r.mu.Unlock()
		return result{notice: "Please finish every step first.", unchanged: true}
	}
	claim, err := r.submitter.Begin()
	if err != nil {
		r.mu.Unlock()
		if errors.Is(err, submission.ErrAlreadySubmitted) {
			return result{notice: "Survey already submitted.", unchanged: true}
		}
		// The concurrent submission renders its own outcome.
		return result{unchanged: true}
	}
	snap := r.wizard.Snapshot()
	r.mu.Unlock()

	if beforeSubmit != nil {
		beforeSubmit()
	}
	answered := beforeSubmit != nil

	rec, err := claim.Send(ctx, snap, user.ID)
	var te *submission.TransportError
	switch {
	case err == nil:
		return result{record: rec, answered: answered}
	case errors.As(err, &te):
		return result{answered: answered, errorText: submitFailedText}
	default:
		b.log.Error("unexpected submission error", zap.Error(err))
		return result{answered: answered, errorText: submitFailedText}
	}
}

func (b *Bot) runFor(chatID int64) *run {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.runs[chatID]
	if !ok {
		r = &run{
			wizard:    wizard.New(b.variant, nil),
			submitter: submission.NewSubmitter(b.transport, nil, b.recorder, b.log.With(zap.Int64("chat_id", chatID))),
		}
		b.runs[chatID] = r
	}
	return r
}

func (b *Bot) dropRun(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.runs, chatID)
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if b.cfg.AdminTelegramID == 0 || msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	if b.metrics == nil {
		b.reply(msg.Chat.ID, "❌ Metrics are not enabled.")
		return
	}
	days, err := b.metrics.GetDailySubmissions(ctx, 7)
	if err != nil {
		b.log.Error("failed to fetch metrics", zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.reply(msg.Chat.ID, formatMetrics(days, metrics.GetSysHealth(dataDir(b.cfg.DatabasePath))))
}

func (b *Bot) sendView(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send survey view", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.log.Debug("failed to edit survey view", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(queryID, text string, alert bool) {
	cb := tgbotapi.NewCallback(queryID, text)
	cb.ShowAlert = alert
	if _, err := b.api.Request(cb); err != nil {
		b.log.Debug("failed to answer callback", zap.Error(err))
	}
}

func identityOf(u *tgbotapi.User) auth.Identity {
	return auth.Identity{
		TelegramID: u.ID,
		Username:   u.UserName,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}

func signInMessage(err error) string {
	if errors.Is(err, auth.ErrNotAllowed) {
		return "Sorry, you are not on the list for this survey."
	}
	return "Failed to sign in. Please try again."
}
