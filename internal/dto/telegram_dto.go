package dto

// Update is the webhook body. Only the fields the bot reads are decoded.
type Update struct {
	UpdateId int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageId int64       `json:"message_id"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Document  *Document   `json:"document,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
}

type Chat struct {
	Id int64 `json:"id"`
}

type Document struct {
	FileId   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

type PhotoSize struct {
	FileId   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size,omitempty"`
}

// LargestPhoto returns the file id of the biggest size Telegram offers.
func (m *Message) LargestPhoto() string {
	best := -1
	id := ""
	for _, p := range m.Photo {
		if area := p.Width * p.Height; area > best {
			best, id = area, p.FileId
		}
	}
	return id
}

type OKResponse struct {
	OK bool `json:"ok"`
}
