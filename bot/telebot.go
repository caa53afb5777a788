// Package bot pushes settlement alerts to the resident over Telegram.
// Divergences are the important case: the chain moved tokens but the
// backend record did not follow, so someone has to look at it.
package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

type TeleBot struct {
	bot     *tgbotapi.BotAPI
	chatId  int64
	updates tgbotapi.UpdatesChannel
}

type TeleBotConfig struct {
	Token  string
	ChatId int64
}

// DivergenceLister serves the /divergences command.
type DivergenceLister interface {
	RetrieveDivergences(unresolvedOnly bool) ([]m.Divergence, error)
}

func NewTeleBot(conf *TeleBotConfig) (*TeleBot, error) {
	bot, err := tgbotapi.NewBotAPI(conf.Token)
	if err != nil {
		return nil, err
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	return &TeleBot{
		bot:     bot,
		chatId:  conf.ChatId,
		updates: updates,
	}, nil
}

// Run consumes the alert channel and answers commands until ch closes.
func (t *TeleBot) Run(ch <-chan string, journal DivergenceLister) {
	t.SendMessage("Solaris Conexus dashboard launched")

	go t.communicate(journal)

	for msg := range ch {
		t.SendMessage(msg)
	}
}

func (t *TeleBot) SendMessage(msg string) {
	t.bot.Send(tgbotapi.NewMessage(t.chatId, msg))
}

func (t *TeleBot) communicate(journal DivergenceLister) {
	for update := range t.updates {
		if update.Message == nil {
			continue
		}
		txt := update.Message.Text
		if len(txt) == 0 || txt[0] != '/' {
			continue
		}

		switch txt {
		case "/help":
			t.SendMessage("/divergences - unresolved settlement divergences")
		case "/divergences":
			t.SendMessage(t.divergenceReport(journal))
		}
	}
}

func (t *TeleBot) divergenceReport(journal DivergenceLister) string {
	if journal == nil {
		return "journal unavailable"
	}

	divergences, err := journal.RetrieveDivergences(true)
	if err != nil {
		return fmt.Sprintf("journal error: %v", err)
	}
	if len(divergences) == 0 {
		return "no unresolved divergences"
	}

	var b strings.Builder
	for _, d := range divergences {
		fmt.Fprintf(&b, "#%d %s tx %s: %s\n", d.ID, d.Flow, d.TxHash, d.Detail)
	}
	return b.String()
}
