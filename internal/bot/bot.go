package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Cronos-Project/Chatbot-Cronos/internal/audit"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/availability"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/booking"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/catalog"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/models"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/normalize"
	"github.com/Cronos-Project/Chatbot-Cronos/internal/session"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Repository extends the flow repository with the read operations the
// command handlers need.
type Repository interface {
	booking.Repository
	ListAll(ctx context.Context) ([]models.Reservation, error)
}

// Bot is a thin Telegram wrapper over the conversation flows. A first
// message from an unknown chat greets the user and opens the booking
// flow right away.
type Bot struct {
	tg       telegramClient
	handler  *booking.Handler
	sessions *session.Store
	repo     Repository
	managers map[int64]struct{}
	logger   *zerolog.Logger
}

func New(
	token string,
	handler *booking.Handler,
	sessions *session.Store,
	repo Repository,
	managers []int64,
	logger *zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(&realTelegramClient{api: api}, handler, sessions, repo, managers, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(
	tg telegramClient,
	handler *booking.Handler,
	sessions *session.Store,
	repo Repository,
	managers []int64,
	logger *zerolog.Logger,
) (*Bot, error) {
	return newBot(tg, handler, sessions, repo, managers, logger)
}

func newBot(
	tg telegramClient,
	handler *booking.Handler,
	sessions *session.Store,
	repo Repository,
	managers []int64,
	logger *zerolog.Logger,
) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	mgrs := make(map[int64]struct{})
	for _, id := range managers {
		mgrs[id] = struct{}{}
	}
	return &Bot{
		tg:       tg,
		handler:  handler,
		sessions: sessions,
		repo:     repo,
		managers: mgrs,
		logger:   logger,
	}, nil
}

// Start begins polling updates until the context is cancelled. Each
// update is handled in its own goroutine; the session lock serializes
// messages of one conversation.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			go b.handleUpdate(updateCtx, &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	l := zerolog.Ctx(ctx)
	l.Debug().
		Int64("user_id", update.Message.From.ID).
		Str("text", update.Message.Text).
		Msg("handling message")
	b.HandleMessage(ctx, update.Message)
}

// HandleMessage processes one inbound message: commands first (they
// interrupt any active flow), then the active flow step, then the
// welcome path for unknown chats.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	if strings.HasPrefix(text, "/") {
		b.handleCommand(ctx, chatID, msg.From.ID, text)
		return
	}

	s := b.sessions.Get(chatID)
	if s == nil {
		b.reply(chatID, msgWelcome)
		s = b.sessions.Start(chatID, session.FlowBooking, booking.StepAskName)
		b.reply(chatID, booking.PromptAskName)
		return
	}

	s.Lock()
	defer s.Unlock()
	if b.sessions.Get(chatID) != s {
		// The flow was replaced or finished while this message waited
		// on the lock; nothing sensible to do with stale input.
		return
	}

	res, err := b.handler.HandleInput(ctx, s, text)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", chatID).Msg("flow step failed")
		b.reply(chatID, msgInternalError)
		return
	}
	b.reply(chatID, res.Reply)
}

func (b *Bot) handleCommand(ctx context.Context, chatID, userID int64, text string) {
	cmd, args, _ := strings.Cut(text, " ")
	switch cmd {
	case "/start":
		b.sessions.Delete(chatID)
		b.reply(chatID, msgWelcome)
		b.sessions.Start(chatID, session.FlowBooking, booking.StepAskName)
		b.reply(chatID, booking.PromptAskName)
	case "/agendar":
		b.sessions.Start(chatID, session.FlowBooking, booking.StepAskName)
		b.reply(chatID, booking.PromptAskName)
	case "/cancelar":
		b.sessions.Start(chatID, session.FlowCancellation, booking.StepCancelName)
		b.reply(chatID, booking.PromptCancelName)
	case "/ajuda":
		b.reply(chatID, msgHelp)
	case "/servicos":
		b.reply(chatID, servicesText())
	case "/horarios":
		b.handleSlotsCommand(ctx, chatID, args)
	case "/exportar":
		if !b.isManager(userID) {
			b.reply(chatID, msgManagersOnly)
			return
		}
		b.handleExport(ctx, chatID)
	default:
		b.reply(chatID, msgUnknownCommand)
	}
}

// handleSlotsCommand answers "/horarios DD/MM/AAAA Barbeiro" with the
// free slots for that combination, without touching any active flow.
func (b *Bot) handleSlotsCommand(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		b.reply(chatID, msgSlotsUsage)
		return
	}

	date, ok := normalize.Date(fields[0])
	if !ok {
		b.reply(chatID, "❌ Data inválida. Use o formato DD/MM/AAAA.")
		return
	}
	barber, ok := catalog.BarberByDisplayName(strings.Join(fields[1:], " "))
	if !ok {
		b.reply(chatID, "❌ Barbeiro inválido. Escolha entre: "+strings.Join(catalog.BarberNames(), ", "))
		return
	}

	existing, err := b.repo.ListByDateBarber(ctx, date, barber.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("slot lookup failed")
		b.reply(chatID, msgInternalError)
		return
	}
	slots := availability.Slots(date, barber.ID, existing)
	if len(slots) == 0 {
		b.reply(chatID, fmt.Sprintf("😓 Não há horários livres para %s com %s.", date, barber.DisplayName))
		return
	}
	b.reply(chatID, fmt.Sprintf("⏰ Horários livres para %s com %s:\n%s",
		date, barber.DisplayName, strings.Join(slots, "\n")))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	reservations, err := b.repo.ListAll(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("export query failed")
		b.reply(chatID, msgInternalError)
		return
	}
	data, err := audit.ExportXLSX(reservations)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("export build failed")
		b.reply(chatID, msgInternalError)
		return
	}

	name := fmt.Sprintf("agendamentos_%s.xlsx", time.Now().Format("2006-01-02"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = fmt.Sprintf("📊 %d agendamentos", len(reservations))
	if _, err := b.tg.Send(doc); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("export upload failed")
	}
}

func (b *Bot) isManager(id int64) bool {
	_, ok := b.managers[id]
	return ok
}

func (b *Bot) reply(chatID int64, text string) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

// SendText is the outbound hook handed to the flow handler; reminder
// callbacks deliver through it outside any update turn.
func (b *Bot) SendText(chatID int64, text string) {
	b.reply(chatID, text)
}
