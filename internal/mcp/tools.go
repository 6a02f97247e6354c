package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/etlefig/Bootschappenbot/internal/category"
)

const listDescription = "List name: default (Boodschappen), weekmenu or toko. Defaults to default."

var listEnum = mcp.Enum("default", "weekmenu", "toko")

var messageToolDef = mcp.NewTool("shopping_message",
	mcp.WithDescription("Send one chat line to the shopping bot exactly as a group member would "+
		"(\"melk\", \"menu: lasagne\", \"done: melk\", \"/list toko\") and get the bot's reply."),
	mcp.WithString("text", mcp.Required(), mcp.Description("The chat line")),
	mcp.WithString("conversation_id", mcp.Description("Conversation the line belongs to; scopes the session category. Defaults to \"mcp\".")),
	mcp.WithString("user_id", mcp.Description("Sender id; scopes the session category")),
	mcp.WithString("author", mcp.Description("Display name stored with added items")),
)

var addToolDef = mcp.NewTool("shopping_add",
	mcp.WithDescription("Add an item to a list. Without a category the keyword classifier picks one."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Item text")),
	mcp.WithString("list", mcp.Description(listDescription), listEnum),
	mcp.WithString("category", mcp.Description("Category, one of: "+strings.Join(category.Names(), "; "))),
	mcp.WithString("who", mcp.Description("Author display name")),
)

var listToolDef = mcp.NewTool("shopping_list",
	mcp.WithDescription("Return a list's items in insertion order, plus the grouped text listing the bot would reply with."),
	mcp.WithString("list", mcp.Description(listDescription), listEnum),
)

var overviewToolDef = mcp.NewTool("shopping_overview",
	mcp.WithDescription("Return total and done item counts for every list."),
)

var doneToolDef = mcp.NewTool("shopping_done",
	mcp.WithDescription("Mark the first open item whose text contains match (case-insensitive) as done."),
	mcp.WithString("match", mcp.Required(), mcp.Description("Substring to look for")),
	mcp.WithString("list", mcp.Description("Restrict the search to one list. Without it the configured done scope applies."), listEnum),
)

var clearToolDef = mcp.NewTool("shopping_clear",
	mcp.WithDescription("Remove every item from a list, or only the done items."),
	mcp.WithString("list", mcp.Description(listDescription+" With done_only and no list, done items are removed from every list."), listEnum),
	mcp.WithBoolean("done_only", mcp.Description("Only remove items marked done")),
)

var setCategoryToolDef = mcp.NewTool("shopping_set_category",
	mcp.WithDescription("Override the category of the item at a 1-based position in the list."),
	mcp.WithString("list", mcp.Description(listDescription), listEnum),
	mcp.WithNumber("position", mcp.Required(), mcp.Description("1-based position as shown in the listing")),
	mcp.WithString("category", mcp.Required(), mcp.Description("Category, one of: "+strings.Join(category.Names(), "; "))),
)

var removeToolDef = mcp.NewTool("shopping_remove",
	mcp.WithDescription("Delete the item at a 1-based position in the list."),
	mcp.WithString("list", mcp.Description(listDescription), listEnum),
	mcp.WithNumber("position", mcp.Required(), mcp.Description("1-based position as shown in the listing")),
)

var exportToolDef = mcp.NewTool("shopping_export",
	mcp.WithDescription("Export items to a JSONL file."),
	mcp.WithString("path", mcp.Description("Output .jsonl path. Defaults to the exports directory.")),
	mcp.WithString("list", mcp.Description("Only export this list"), listEnum),
)

var importToolDef = mcp.NewTool("shopping_import",
	mcp.WithDescription("Import items from a JSONL export or a TinyDB .json list file. Items whose id already exists are skipped."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to the .jsonl or .json file")),
)
