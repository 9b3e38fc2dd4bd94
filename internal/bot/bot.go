package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nany306/bunny-assistant/internal/model"
	"github.com/nany306/bunny-assistant/internal/repository"
	"github.com/nany306/bunny-assistant/internal/service"
)

// Bot aggregates the Telegram API with the planner and ledger services.
// It is the stateful front end: every command goes through the services'
// load -> mutate -> persist path.
type Bot struct {
	api         *tgbotapi.BotAPI
	userRepo    *repository.UserRepository
	plannerSvc  *service.PlannerService
	ledgerSvc   *service.LedgerService
	reminderSvc *service.ReminderService
}

func New(token string, userRepo *repository.UserRepository, plannerSvc *service.PlannerService, ledgerSvc *service.LedgerService, reminderSvc *service.ReminderService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		userRepo:    userRepo,
		plannerSvc:  plannerSvc,
		ledgerSvc:   ledgerSvc,
		reminderSvc: reminderSvc,
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.From == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I did not get that. Try /help for the command list.")
	}

	log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())

	if _, err := b.userRepo.UpsertFromTelegram(ctx, msg.From.ID, msg.From.FirstName, msg.From.LastName, msg.From.UserName); err != nil {
		return err
	}

	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "task":
		return b.handleAddTask(ctx, msg)
	case "appt":
		return b.handleAddAppointment(ctx, msg)
	case "list":
		return b.handleList(ctx, msg)
	case "suggest":
		return b.handleSuggest(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "progress":
		return b.handleProgress(ctx, msg)
	case "tx":
		return b.handleTransaction(ctx, msg)
	case "balance":
		return b.handleBalance(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I track your tasks, appointments and spending, and tell you what to work on next.</b>\n\nTry /help for the full command list.",
		html.EscapeString(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /task name; urgency; importance; minutes; project; deadline — add a task (only the name is required, deadline is YYYY-MM-DD)\n" +
		"• /appt name; start; minutes — add an appointment (start is YYYY-MM-DD HH:MM)\n" +
		"• /list — show everything, tasks ranked by priority\n" +
		"• /suggest &lt;minutes&gt; — what to do with a free slot\n" +
		"• /done &lt;id&gt; — mark a task completed\n" +
		"• /progress &lt;id&gt; &lt;percent&gt; — log progress on a task\n" +
		"• /tx amount; description; kind; category — record an expense or income\n" +
		"• /balance — ledger totals\n" +
		"• /report — send the daily report now"
	return b.sendText(msg.Chat.ID, text)
}

// handleAddTask parses "/task name; urgency; importance; minutes; project; deadline".
// Every field after the name is optional.
func (b *Bot) handleAddTask(ctx context.Context, msg *tgbotapi.Message) error {
	fields := splitArgs(msg.CommandArguments())
	if len(fields) == 0 {
		return b.sendText(msg.Chat.ID, "Usage: /task name; urgency; importance; minutes; project; deadline")
	}

	input := model.TaskInput{Name: fields[0], DurationMinutes: model.DefaultDurationMinutes}
	var err error
	if input.Urgency, err = optionalInt(fields, 1, 0); err != nil {
		return b.sendText(msg.Chat.ID, "Urgency must be a number from 1 to 5.")
	}
	if input.Importance, err = optionalInt(fields, 2, 0); err != nil {
		return b.sendText(msg.Chat.ID, "Importance must be a number from 1 to 5.")
	}
	if input.DurationMinutes, err = optionalInt(fields, 3, model.DefaultDurationMinutes); err != nil {
		return b.sendText(msg.Chat.ID, "Duration must be a number of minutes.")
	}
	if len(fields) > 4 {
		input.Project = fields[4]
	}
	if len(fields) > 5 {
		input.Deadline = fields[5]
	}

	task, err := b.plannerSvc.AddTask(ctx, input)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Task <b>%s</b> added with id %d.", html.EscapeString(task.Name), task.ID))
}

// handleAddAppointment parses "/appt name; start; minutes".
func (b *Bot) handleAddAppointment(ctx context.Context, msg *tgbotapi.Message) error {
	fields := splitArgs(msg.CommandArguments())
	if len(fields) < 2 {
		return b.sendText(msg.Chat.ID, "Usage: /appt name; 2026-09-01 14:00; minutes")
	}

	input := model.AppointmentInput{Name: fields[0], StartAt: fields[1], DurationMinutes: model.DefaultDurationMinutes}
	var err error
	if input.DurationMinutes, err = optionalInt(fields, 2, model.DefaultDurationMinutes); err != nil {
		return b.sendText(msg.Chat.ID, "Duration must be a number of minutes.")
	}

	appt, err := b.plannerSvc.AddAppointment(ctx, input)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📌 Appointment <b>%s</b> added with id %d.", html.EscapeString(appt.Name), appt.ID))
}

func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.reminderSvc.DailySummary(ctx, time.Now())
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleSuggest(ctx context.Context, msg *tgbotapi.Message) error {
	minutes, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || minutes <= 0 {
		return b.sendText(msg.Chat.ID, "Usage: /suggest <minutes>, e.g. /suggest 45")
	}

	suggestions, err := b.plannerSvc.Suggest(ctx, minutes, time.Now())
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if len(suggestions) == 0 {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Nothing fits a %d minute slot right now.", minutes))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎯 <b>Best use of %d minutes</b>\n", minutes))
	for i, sug := range suggestions {
		sb.WriteString(fmt.Sprintf("%d. %s — %s, ~%d min left\n",
			i+1, html.EscapeString(sug.Event.Name), describeScore(sug.Score), sug.Event.RemainingMinutes()))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /done <id>, e.g. /done 3")
	}

	task, err := b.plannerSvc.Complete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("No open task with id %d.", id))
	}
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🎉 <b>%s</b> is done.", html.EscapeString(task.Name)))
}

func (b *Bot) handleProgress(ctx context.Context, msg *tgbotapi.Message) error {
	parts := strings.Fields(msg.CommandArguments())
	if len(parts) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /progress <id> <percent>, e.g. /progress 3 25")
	}
	id, err := parseID(parts[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The id must be a positive number.")
	}
	delta, err := strconv.Atoi(parts[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The percentage must be a number.")
	}

	task, err := b.plannerSvc.Advance(ctx, id, delta)
	if errors.Is(err, model.ErrNotFound) {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("No open task with id %d.", id))
	}
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	if task.Completed {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🎉 <b>%s</b> reached 100%% and is done.", html.EscapeString(task.Name)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📈 <b>%s</b> is now at %d%%, ~%d min left.",
		html.EscapeString(task.Name), task.ProgressPercent, task.RemainingMinutes()))
}

// handleTransaction parses "/tx amount; description; kind; category".
func (b *Bot) handleTransaction(ctx context.Context, msg *tgbotapi.Message) error {
	fields := splitArgs(msg.CommandArguments())
	if len(fields) < 2 {
		return b.sendText(msg.Chat.ID, "Usage: /tx 12.50; groceries; expense; food")
	}

	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return b.sendText(msg.Chat.ID, "The amount must be a number, e.g. 12.50.")
	}

	input := model.TransactionInput{Amount: amount, Description: fields[1], Kind: "expense"}
	if len(fields) > 2 {
		input.Kind = fields[2]
	}
	if len(fields) > 3 {
		input.Category = fields[3]
	}

	entry, err := b.ledgerSvc.AddTransaction(ctx, input)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	sign := "-"
	if entry.Kind == model.KindIncome {
		sign = "+"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("💸 Recorded %s%.2f for <b>%s</b> (%s).",
		sign, entry.Amount, html.EscapeString(entry.Description), html.EscapeString(entry.Category)))
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) error {
	balance, err := b.ledgerSvc.CurrentBalance(ctx)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	text := fmt.Sprintf("💰 <b>Balance</b>\nIncome: %.2f\nSpent: %.2f\nNet: <b>%+.2f</b>",
		balance.Income, balance.Expense, balance.Net)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := b.reminderSvc.DailySummary(ctx, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", html.EscapeString(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendDailyReports pushes the daily summary to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	text, err := b.reminderSvc.DailySummary(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, user := range users {
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send report to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) replyError(chatID int64, err error) error {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return b.sendText(chatID, fmt.Sprintf("🚫 %s.", html.EscapeString(vErr.Error())))
	}
	log.Printf("command failed: %v", err)
	return b.sendText(chatID, "Something went wrong, please try again.")
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func describeScore(score float64) string {
	if math.IsInf(score, 1) {
		return "due now"
	}
	return fmt.Sprintf("score %.2f", score)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// splitArgs splits semicolon-separated command arguments, trimming each
// field and dropping trailing empties.
func splitArgs(raw string) []string {
	parts := strings.Split(raw, ";")
	var fields []string
	for _, part := range parts {
		fields = append(fields, strings.TrimSpace(part))
	}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 1 && fields[0] == "" {
		return nil
	}
	return fields
}

func optionalInt(fields []string, idx, fallback int) (int, error) {
	if idx >= len(fields) || fields[idx] == "" {
		return fallback, nil
	}
	return strconv.Atoi(fields[idx])
}
