package handlers

import (
	"strings"
	"time"

	"secrm-eiga.dev/web/internal/chat"
	"secrm-eiga.dev/web/internal/cms"
	"secrm-eiga.dev/web/internal/format"
	"secrm-eiga.dev/web/internal/render"
)

// PlanView is a pricing tier with its price already formatted.
type PlanView struct {
	ID        string
	Name      string
	Price     string
	Period    string
	Badge     string
	Featured  bool
	Features  []string
	CTA       cms.Link
	Secondary bool
}

// BuildPlans formats each plan's price for lang. Quote-based plans show their label.
func BuildPlans(plans []cms.Plan, lang string) []PlanView {
	out := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		v := PlanView{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.CustomLabel,
			Badge:     p.Badge,
			Featured:  p.Featured,
			Features:  p.Features,
			CTA:       p.CTA,
			Secondary: p.Secondary,
		}
		if p.PriceCents > 0 {
			v.Price = format.FmtCurrency(p.PriceCents, p.Currency, lang)
			if p.Period != "" {
				v.Period = "/" + p.Period
			}
		}
		out = append(out, v)
	}
	return out
}

// Analysis is the pipeline and demo form state.
type Analysis struct {
	Input    string
	Sample   string
	Endpoint string
	Target   string
	Title    string
	Result   *render.ResultView
	Error    *render.ErrorView
}

// ChatPage is the chat section: static copy plus the session's transcript.
type ChatPage struct {
	Copy     cms.Chat
	Greeting render.ChatMessageView
	Messages []ChatItem
}

// ChatItem is one rendered transcript entry, optionally followed by suggestions.
type ChatItem struct {
	Message     render.ChatMessageView
	Suggestions []string
}

// BuildChatPage replays a transcript into chat bubbles so a reload keeps the
// conversation visible.
func BuildChatPage(content cms.Chat, entries []chat.Entry, now time.Time) ChatPage {
	page := ChatPage{
		Copy:     content,
		Greeting: render.AIMessage(strings.TrimSpace(content.Greeting), now),
	}
	page.Greeting.Time = "Just now"
	for _, e := range entries {
		switch {
		case e.Sender == chat.SenderUser:
			page.Messages = append(page.Messages, ChatItem{Message: render.UserMessage(e.Message, e.Timestamp)})
		case e.Data != nil:
			reply := render.BuildChatReply(*e.Data, e.Timestamp)
			page.Messages = append(page.Messages, ChatItem{Message: reply.Message, Suggestions: reply.Suggestions})
		default:
			page.Messages = append(page.Messages, ChatItem{Message: render.AIMessage(e.Message, e.Timestamp)})
		}
	}
	return page
}
