package service

import (
	"context"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/nany306/bunny-assistant/internal/model"
	"github.com/nany306/bunny-assistant/internal/priority"
	"github.com/nany306/bunny-assistant/internal/repository"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	events       *repository.EventRepository
	transactions *repository.TransactionRepository
}

func NewReminderService(events *repository.EventRepository, transactions *repository.TransactionRepository) *ReminderService {
	return &ReminderService{events: events, transactions: transactions}
}

// DailySummary renders an HTML report: active tasks best score first,
// upcoming appointments, and the ledger balance.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	inventory, err := s.events.LoadAll(ctx)
	if err != nil {
		return "", err
	}

	ranked := priority.Rank(inventory, now)

	var appointments []*model.Event
	for _, ev := range inventory {
		if ev.Kind == model.KindAppointment {
			appointments = append(appointments, ev)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	builder.WriteString("🔥 <b>Tasks by priority</b>\n")
	if len(ranked) == 0 {
		builder.WriteString("— no open tasks\n")
	} else {
		for _, sug := range ranked {
			builder.WriteString(formatRankedTask(sug, now))
		}
	}

	builder.WriteString("\n📅 <b>Appointments</b>\n")
	if len(appointments) == 0 {
		builder.WriteString("— nothing scheduled\n")
	} else {
		for _, appt := range appointments {
			builder.WriteString(formatAppointment(appt))
		}
	}

	if balance, ok := s.balanceLine(ctx); ok {
		builder.WriteString("\n")
		builder.WriteString(balance)
	}

	return strings.TrimSpace(builder.String()), nil
}

func (s *ReminderService) balanceLine(ctx context.Context) (string, bool) {
	ledger, err := s.transactions.LoadAll(ctx)
	if err != nil || len(ledger) == 0 {
		return "", false
	}

	var income, expense float64
	for _, entry := range ledger {
		switch entry.Kind {
		case model.KindIncome:
			income += entry.Amount
		case model.KindExpense:
			expense += entry.Amount
		}
	}
	return fmt.Sprintf("💰 <b>Balance</b>: %+.2f (income %.2f, spent %.2f)\n", income-expense, income, expense), true
}

func formatRankedTask(sug priority.Suggestion, now time.Time) string {
	task := sug.Event

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", deadlineIcon(task, now), html.EscapeString(task.Name)))
	sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(task.Project)))
	sb.WriteString(fmt.Sprintf("\n   %s · %d%% done · ~%d min left", formatScore(sug.Score), task.ProgressPercent, task.RemainingMinutes()))
	if task.Deadline != "" {
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", html.EscapeString(task.Deadline)))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatAppointment(appt *model.Event) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📌 %s", html.EscapeString(appt.Name)))
	if appt.StartAt != "" {
		sb.WriteString(fmt.Sprintf(" — %s", html.EscapeString(appt.StartAt)))
	}
	if appt.DurationMinutes > 0 {
		sb.WriteString(fmt.Sprintf(" (%d min)", appt.DurationMinutes))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatScore(score float64) string {
	if math.IsInf(score, 1) {
		return "score ∞"
	}
	return fmt.Sprintf("score %.2f", score)
}

func deadlineIcon(task *model.Event, now time.Time) string {
	if task.Deadline == "" {
		return "🟢"
	}
	due, err := time.ParseInLocation(model.DeadlineLayout, task.Deadline, now.Location())
	if err != nil {
		return "🟢"
	}
	switch {
	case due.AddDate(0, 0, 1).Before(now):
		return "⚠️"
	case due.Sub(now) <= 48*time.Hour:
		return "⏳"
	default:
		return "🟢"
	}
}
