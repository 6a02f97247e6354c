package bot

import "strings"

// TextEvent builds an event from a raw chat line. A line starting with "/"
// becomes a command ("/list@botname toko" gives Command "list", Args
// ["toko"]); anything else is free text. A "/" without a command name
// yields an empty event, which the dispatcher ignores.
func TextEvent(conversationID, userID, author, text string) Event {
	ev := Event{ConversationID: conversationID, UserID: userID, Author: author}

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		ev.Text = text
		return ev
	}

	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		return ev
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	ev.Command = cmd
	ev.Args = fields[1:]
	return ev
}
