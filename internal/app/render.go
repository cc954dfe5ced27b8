package app

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
	"github.com/agalitsyn/team-tasks-bot/internal/notify"
)

func roleKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👑 I am an Admin", rolePrefix+string(model.UserRoleAdmin)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🙋 I am a Member", rolePrefix+string(model.UserRoleMember)),
		),
	)
}

func mainMenuKeyboard(role model.UserRole) tgbotapi.InlineKeyboardMarkup {
	if role == model.UserRoleAdmin {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ Add Task", menuPrefix+"add_task"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("👥 Add Member", menuPrefix+"add_member"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📊 Task Report", menuPrefix+"report"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑️ Delete Task", menuPrefix+"delete_task"),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📌 My Tasks", menuPrefix+"my_tasks"),
		),
	)
}

func deleteTaskKeyboard(tasks []model.Task) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		label := fmt.Sprintf("#%d 👤 %d | %s | %s", t.ID, t.AssigneeID, statusGlyph(t.Status), truncate(t.Description, 25))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", deletePrefix, t.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func markDoneKeyboard(taskID int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Mark as Done", fmt.Sprintf("%s%d", donePrefix, taskID)),
		),
	)
}

// formatTaskReport renders one line per task with a deadline summary
// computed against the injected today.
func formatTaskReport(tasks []model.Task, today time.Time) string {
	if len(tasks) == 0 {
		return "📭 No tasks found."
	}

	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "📊 Task Report:")
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf(
			"#%d 👤 %d | %s | %s | 🕒 %s",
			t.ID, t.AssigneeID, statusGlyph(t.Status), t.Description, deadlineSummary(t, today),
		))
	}
	return strings.Join(lines, "\n")
}

func deadlineSummary(t model.Task, today time.Time) string {
	if !t.HasDeadline() {
		return "no deadline"
	}

	daysLeft := daysBetween(today, t.Deadline)
	var info string
	switch {
	case daysLeft > 0:
		info = fmt.Sprintf("%d days left", daysLeft)
	case daysLeft == 0:
		info = "due today"
	default:
		info = fmt.Sprintf("overdue by %d days", -daysLeft)
	}
	return fmt.Sprintf("%s (%s)", info, notify.FormatDeadline(t.Deadline))
}

// daysBetween counts whole calendar days from a to b, negative when b is in
// the past.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func statusGlyph(s model.TaskStatus) string {
	if s == model.TaskStatusDone {
		return "✅"
	}
	return "❌"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
