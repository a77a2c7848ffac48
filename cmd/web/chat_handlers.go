package main

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"secrm-eiga.dev/web/internal/chat"
	handlersPkg "secrm-eiga.dev/web/internal/handlers"
	mw "secrm-eiga.dev/web/internal/middleware"
	"secrm-eiga.dev/web/internal/platform/requestctx"
	"secrm-eiga.dev/web/internal/render"
)

// chatExchange is one user message and the reply it produced.
type chatExchange struct {
	Lang  string
	User  handlersPkg.ChatItem
	Reply handlersPkg.ChatItem
}

// ChatMessageFrag records the user's message, analyses it and returns both
// bubbles for appending to the log.
func ChatMessageFrag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	transcript := transcripts.Get(mw.GetSession(r).ID)
	sentAt := clock()
	if _, err := transcript.Append(chat.SenderUser, message, nil, sentAt); err != nil {
		http.Error(w, "invalid message", http.StatusBadRequest)
		return
	}

	ex := chatExchange{
		Lang: mw.Lang(r),
		User: handlersPkg.ChatItem{Message: render.UserMessage(message, sentAt)},
	}
	res, err := analyzer.Submit(ctx, message)
	repliedAt := clock()
	if err != nil {
		requestctx.Logger(ctx).Warn("chat analysis failed", zap.Error(err))
		_, _ = transcript.Append(chat.SenderAI, render.ChatErrorMessage, nil, repliedAt)
		ex.Reply = handlersPkg.ChatItem{Message: render.AIMessage(render.ChatErrorMessage, repliedAt)}
	} else {
		reply := render.BuildChatReply(res, repliedAt)
		text := res.CustomerResponse
		if strings.TrimSpace(text) == "" {
			text = render.NoResponse
		}
		_, _ = transcript.Append(chat.SenderAI, text, &res, repliedAt)
		ex.Reply = handlersPkg.ChatItem{Message: reply.Message, Suggestions: reply.Suggestions}
	}
	renderTemplate(w, r, "frag_chat_exchange", ex)
}

// ChatClearFrag empties the session's transcript and returns the greeting.
func ChatClearFrag(w http.ResponseWriter, r *http.Request) {
	transcripts.Get(mw.GetSession(r).ID).Clear()
	lang := mw.Lang(r)
	content, err := contentClient.Chat(lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	page := handlersPkg.BuildChatPage(content, nil, clock())
	w.Header().Set("HX-Trigger", "chat:cleared")
	renderTemplate(w, r, "frag_chat_cleared", page)
}

// ChatExportHandler downloads the transcript as JSON.
func ChatExportHandler(w http.ResponseWriter, r *http.Request) {
	now := clock()
	body, err := transcripts.Get(mw.GetSession(r).ID).Export(now)
	if err != nil {
		requestctx.Logger(r.Context()).Error("export transcript", zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+chat.ExportFilename(now)+`"`)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}
