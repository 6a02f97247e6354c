package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/etlefig/Bootschappenbot/internal/bot"
	"github.com/etlefig/Bootschappenbot/internal/config"
	"github.com/etlefig/Bootschappenbot/internal/errors"
	"github.com/etlefig/Bootschappenbot/internal/item"
	"github.com/etlefig/Bootschappenbot/internal/ops"
	"github.com/etlefig/Bootschappenbot/internal/render"
	"github.com/etlefig/Bootschappenbot/internal/session"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db         *sql.DB
	cfg        *config.Config
	exportDir  string
	dispatcher *bot.Dispatcher
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance. shopping_message goes
// through a dispatcher with its own session store.
func NewHandlers(db *sql.DB, cfg *config.Config, exportDir string, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	sessions := session.New(cfg.SessionCapacity, cfg.SessionTTLDuration())
	return &Handlers{
		db:         db,
		cfg:        cfg,
		exportDir:  exportDir,
		dispatcher: bot.New(bot.NewSQLStore(db), sessions, logger, bot.WithDoneScope(cfg.DoneScope)),
		logger:     logger.Named("mcp"),
	}
}

// Request types for each tool

// MessageRequest represents the arguments for shopping_message.
type MessageRequest struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	Author         string `json:"author,omitempty"`
}

// MessageResult is the shopping_message result.
type MessageResult struct {
	Reply   string      `json:"reply"`
	Silent  bool        `json:"silent,omitempty"`
	Changed []item.List `json:"changed,omitempty"`
}

// AddRequest represents the arguments for shopping_add.
type AddRequest struct {
	Text     string `json:"text"`
	List     string `json:"list,omitempty"`
	Category string `json:"category,omitempty"`
	Who      string `json:"who,omitempty"`
}

// ListRequest represents the arguments for shopping_list.
type ListRequest struct {
	List string `json:"list,omitempty"`
}

// ListResult is the shopping_list result.
type ListResult struct {
	List  item.List   `json:"list"`
	Title string      `json:"title"`
	Items []item.Item `json:"items"`
	Text  string      `json:"text"`
}

// DoneRequest represents the arguments for shopping_done.
type DoneRequest struct {
	Match string `json:"match"`
	List  string `json:"list,omitempty"`
}

// ClearRequest represents the arguments for shopping_clear.
type ClearRequest struct {
	List     string `json:"list,omitempty"`
	DoneOnly bool   `json:"done_only,omitempty"`
}

// PositionRequest represents the arguments for shopping_set_category and
// shopping_remove.
type PositionRequest struct {
	List     string `json:"list,omitempty"`
	Position int    `json:"position"`
	Category string `json:"category,omitempty"`
}

// ExportRequest represents the arguments for shopping_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
	List string `json:"list,omitempty"`
}

// ImportRequest represents the arguments for shopping_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// Handler implementations

// HandleMessage handles the shopping_message tool call.
func (h *Handlers) HandleMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MessageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.ConversationID) == "" {
		input.ConversationID = "mcp"
	}

	reply, err := h.dispatcher.Handle(ctx, bot.TextEvent(input.ConversationID, input.UserID, input.Author, input.Text))
	if err != nil {
		return h.opError(err), nil
	}

	out := MessageResult{Silent: reply.Silent, Changed: reply.Changed}
	if !reply.Silent {
		out.Reply = reply.Text
	}
	return successResult(out)
}

// HandleAdd handles the shopping_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Add(ctx, h.db, ops.AddInput{
		Text:     input.Text,
		Who:      input.Who,
		List:     listArg(input.List),
		Category: input.Category,
	})
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(result)
}

// HandleList handles the shopping_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	list := listArg(input.List)
	items, err := ops.Query(ctx, h.db, list)
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(ListResult{
		List:  list,
		Title: list.Title(),
		Items: items,
		Text:  render.Text(list, items),
	})
}

// HandleOverview handles the shopping_overview tool call.
func (h *Handlers) HandleOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := ops.Overview(ctx, h.db)
	if err != nil {
		return h.opError(err), nil
	}
	return successResult(map[string]any{"lists": counts})
}

// HandleDone handles the shopping_done tool call.
func (h *Handlers) HandleDone(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DoneRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	scope := optionalListArg(input.List)
	if scope == nil && h.cfg.DoneScope == config.DoneScopeList {
		l := item.ListDefault
		scope = &l
	}

	result, err := ops.MarkDone(ctx, h.db, ops.MarkDoneInput{Match: input.Match, List: scope})
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(result)
}

// HandleClear handles the shopping_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var result *ops.ClearOutput
	if input.DoneOnly {
		result, err = ops.ClearDone(ctx, h.db, optionalListArg(input.List))
	} else {
		result, err = ops.ClearList(ctx, h.db, listArg(input.List))
	}
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(result)
}

// HandleSetCategory handles the shopping_set_category tool call.
func (h *Handlers) HandleSetCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PositionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SetCategory(ctx, h.db, ops.SetCategoryInput{
		List:     listArg(input.List),
		Position: input.Position,
		Category: input.Category,
	})
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(result)
}

// HandleRemove handles the shopping_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PositionRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Remove(ctx, h.db, ops.RemoveInput{
		List:     listArg(input.List),
		Position: input.Position,
	})
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(result)
}

// HandleExport handles the shopping_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, ops.ExportInput{
		Path: input.Path,
		Dir:  h.exportDir,
		List: optionalListArg(input.List),
	})
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(result)
}

// HandleImport handles the shopping_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, ops.ImportInput{Path: input.Path})
	if err != nil {
		return h.opError(err), nil
	}

	return successResult(result)
}

// Result helpers

// opError logs internal failures before turning err into a tool error.
func (h *Handlers) opError(err error) *mcp.CallToolResult {
	if bErr, ok := errors.As(err); !ok || bErr.Code == errors.ErrInternal {
		h.logger.Error("tool call failed", zap.Error(err))
	}
	return errorResult(err)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if bErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    bErr.Code,
			"message": bErr.Message,
			"status":  bErr.Status,
		}
		if bErr.Code != errors.ErrInternal && bErr.Details != nil {
			errorObj["details"] = bErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
