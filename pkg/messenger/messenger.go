// Package messenger is the outbound side of the chat: replies, files and
// file downloads.
package messenger

import "context"

// Keyboard is a reply keyboard; each inner slice is one row of button labels.
type Keyboard struct {
	Rows   [][]string
	OneUse bool
}

// Messenger is everything the bot needs from the chat platform.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string, keyboard *Keyboard) error
	SendDocument(ctx context.Context, chatID, fileName string, data []byte, caption string) error
	FileURL(ctx context.Context, fileID string) (string, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}
