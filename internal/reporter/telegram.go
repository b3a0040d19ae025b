package reporter

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobharvest/internal/models"
)

// TelegramReporter pushes new records and run summaries to a Telegram chat.
type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) SendJob(job models.Job) error {
	text := fmt.Sprintf(
		"🔥 <b>%s</b>\n"+
			"🏢 %s\n"+
			"📍 %s\n"+
			"🏷 %s · %s · %s\n"+
			"🔗 <a href=\"%s\">View Posting</a>",
		job.Title,
		job.Company,
		job.Location,
		job.Category,
		job.JobType,
		job.WorkplaceType,
		job.URL,
	)
	return t.SendMessage(text)
}

// SendRunSummary reports per-company batch statistics at the end of a run.
func (t *TelegramReporter) SendRunSummary(company string, stats models.BatchStats) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>%s</b>: found %d, processed %d, categorized %d",
		company, stats.JobsFound, stats.JobsProcessed, stats.JobsCategorized)
	if len(stats.Errors) > 0 {
		fmt.Fprintf(&sb, ", errors %d", len(stats.Errors))
	}
	return t.SendMessage(sb.String())
}

func (t *TelegramReporter) SendError(errReq error) error {
	return t.SendMessage(fmt.Sprintf("⚠️ <b>Harvest Error</b>:\n%v", errReq))
}
