package telegram

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"meal-survey/internal/auth"
	"meal-survey/internal/catalog"
	"meal-survey/internal/metrics"
	"meal-survey/internal/submission"
	"meal-survey/internal/wizard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes.
const (
	actionPlan   = "plan"
	actionOption = "opt"
	actionNext   = "next"
	actionPrev   = "prev"
	actionSubmit = "submit"
	actionAgain  = "again"
)

const submitFailedText = "❌ *Could not submit your survey.* Please try again."

var slotNames = map[catalog.Slot]string{
	catalog.SlotBreakfast: "Breakfast",
	catalog.SlotLunch:     "Lunch",
	catalog.SlotDinner:    "Dinner",
}

// render draws the current step of a run. The caller holds r.mu.
func render(r *run, user *auth.User) (string, tgbotapi.InlineKeyboardMarkup) {
	if rec := r.submitter.Last(); rec != nil {
		return renderSubmitted(rec)
	}

	w := r.wizard
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Step %d of %d\n\n", w.Index()+1, w.Len()))

	var rows [][]tgbotapi.InlineKeyboardButton
	slot, isSlot := w.Step().Slot()
	if !isSlot {
		if w.Index() == 0 && user != nil && user.DisplayName != "" {
			sb.WriteString(fmt.Sprintf("Hi %s! 👋\n", escape(user.DisplayName)))
		}
		sb.WriteString("*Choose your meal plan*\n")
		sb.WriteString("_Lunch and dinner options depend on your plan_\n")
		for _, p := range catalog.Plans() {
			label := "⬜ " + string(p)
			if p == w.Plan() {
				label = "✅ " + string(p)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, actionPlan+"|"+string(p)),
			))
		}
	} else {
		section := catalog.SectionFor(slot)
		sb.WriteString(fmt.Sprintf("*%s*\n_%s_\n\n", escape(section.Title), escape(section.Subtitle)))
		unit := "items"
		if slot == catalog.SlotBreakfast {
			unit = "days"
		}
		sb.WriteString(fmt.Sprintf("Selected: %d %s\n", w.Count(slot), unit))

		for _, opt := range w.Menu() {
			label := opt.Name
			if slot == catalog.SlotBreakfast {
				label = opt.Label()
			}
			mark := "⬜ "
			if w.Selections().IsSelected(slot, opt.Key) {
				mark = "✅ "
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(mark+label, actionOption+"|"+strconv.Itoa(int(opt.Key))),
			))
		}
	}
	if w.Plan() != catalog.PlanUnset {
		sb.WriteString(fmt.Sprintf("\nPlan: *%s*", escape(string(w.Plan()))))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if w.Index() > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Previous", actionPrev))
	}
	if w.IsTerminal() {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("📨 Submit Survey", actionSubmit))
	} else {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", actionNext))
	}
	rows = append(rows, nav)

	return strings.TrimRight(sb.String(), "\n"), tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// renderSubmitted summarises an acknowledged survey.
func renderSubmitted(rec *submission.Record) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("✅ *Survey Complete!*\n")
	sb.WriteString("Thank you for sharing your meal preferences.\n")
	if rec.Payload.Plan != nil {
		sb.WriteString(fmt.Sprintf("\nPlan: *%s*\n", escape(string(*rec.Payload.Plan))))
	}
	for _, slot := range catalog.Slots() {
		sb.WriteString(fmt.Sprintf("\n*Favorite %s*\n", slotNames[slot]))
		labels := rec.Payload.Answers.For(slot)
		if len(labels) == 0 {
			sb.WriteString("_None selected_\n")
			continue
		}
		for _, l := range labels {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(l)))
		}
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔁 Submit another", actionAgain),
		),
	)
	return strings.TrimRight(sb.String(), "\n"), kb
}

// escape quotes user and menu text for legacy Markdown messages.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func parseKeyArg(arg string) (catalog.OrdinalKey, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", wizard.ErrUnknownOption, arg)
	}
	return catalog.OrdinalKey(n), nil
}

func formatMetrics(days []metrics.DailySubmissions, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Survey & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Submissions*\n")
	if len(days) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range days {
		sb.WriteString(fmt.Sprintf("• *%s*: %d submitted, %d failed (avg %dms)\n", d.Date, d.Submitted, d.Failed, d.AvgMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataSize()))
	return sb.String()
}

// dataDir is the directory holding the database file.
func dataDir(dbPath string) string {
	return filepath.Dir(dbPath)
}
