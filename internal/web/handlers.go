package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/etlefig/Bootschappenbot/internal/bot"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
	"github.com/etlefig/Bootschappenbot/internal/ops"
	"github.com/etlefig/Bootschappenbot/internal/render"
)

const maxMessageBytes = 16 << 10

// MessageHandler processes one chat event; *bot.Dispatcher implements it.
type MessageHandler interface {
	Handle(ctx context.Context, ev bot.Event) (bot.Reply, error)
}

// Handlers contains HTTP route handlers.
type Handlers struct {
	db       *sql.DB
	handler  MessageHandler
	renderer *Renderer
}

// MessageRequest is the body of POST /api/messages.
type MessageRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Author         string `json:"author"`
	Text           string `json:"text"`
}

// MessageResponse is the reply to POST /api/messages. Reply is empty when
// the bot stays silent.
type MessageResponse struct {
	Reply   string      `json:"reply"`
	Silent  bool        `json:"silent,omitempty"`
	Changed []item.List `json:"changed,omitempty"`
}

// ListResponse is the body of GET /api/lists/{list}.
type ListResponse struct {
	List  item.List   `json:"list"`
	Title string      `json:"title"`
	Items []item.Item `json:"items"`
}

// HandleMessage handles POST /api/messages: one chat line in, one reply out.
func (h *Handlers) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.ConversationID) == "" {
		req.ConversationID = "web"
	}

	ev := bot.TextEvent(req.ConversationID, req.UserID, req.Author, req.Text)
	reply, err := h.handler.Handle(r.Context(), ev)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	resp := MessageResponse{Silent: reply.Silent, Changed: reply.Changed}
	if !reply.Silent {
		resp.Reply = reply.Text
	}
	renderJSON(w, http.StatusOK, resp)
}

// HandleAPIOverview handles GET /api/lists: item counts per list.
func (h *Handlers) HandleAPIOverview(w http.ResponseWriter, r *http.Request) {
	counts, err := ops.Overview(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"lists": counts})
}

// HandleAPIList handles GET /api/lists/{list}: the list's items in
// insertion order.
func (h *Handlers) HandleAPIList(w http.ResponseWriter, r *http.Request) {
	list, err := pathList(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	items, err := ops.Query(r.Context(), h.db, list)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, ListResponse{List: list, Title: list.Title(), Items: items})
}

// HandleOverview handles GET / with links to every list.
func (h *Handlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	counts, err := ops.Overview(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "overview", OverviewPageData{
		PageData: PageData{
			Title:   "Overzicht",
			Version: h.renderer.version,
		},
		Lists: counts,
	})
}

// HandleList handles GET /lists/{list}: the grouped listing as HTML.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := pathList(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	items, err := ops.Query(r.Context(), h.db, list)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   list.Title(),
			Version: h.renderer.version,
			Nav:     string(list),
		},
		List:         list,
		Lists:        item.AllLists(),
		Count:        len(items),
		RenderedHTML: h.renderer.renderMarkdown(render.Markdown(list, items)),
	})
}

// pathList resolves the {list} path value. Unlike chat input, an unknown
// name here is an error rather than the primary list.
func pathList(r *http.Request) (item.List, error) {
	raw := r.PathValue("list")
	list, ok := item.ParseList(raw)
	if !ok {
		return "", errors.NewInvalidRequest("unknown list \"" + raw + "\" (valid: default, weekmenu, toko)")
	}
	return list, nil
}
