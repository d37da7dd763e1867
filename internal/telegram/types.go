package telegram

// Wire types for the subset of the Bot API this bot touches.

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	EditedMessage *Message       `json:"edited_message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID      int64     `json:"message_id"`
	Date           int64     `json:"date,omitempty"`
	Chat           *Chat     `json:"chat,omitempty"`
	From           *User     `json:"from,omitempty"`
	ReplyTo        *Message  `json:"reply_to_message,omitempty"`
	Entities       []Entity  `json:"entities,omitempty"`
	Text           string    `json:"text,omitempty"`
	NewChatMembers []User    `json:"new_chat_members,omitempty"`
}

type Chat struct {
	ID    int64  `json:"id"`
	Type  string `json:"type,omitempty"` // private|group|supergroup|channel
	Title string `json:"title,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type Entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	User   *User  `json:"user,omitempty"` // for text_mention
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

type ChatMember struct {
	Status            string `json:"status"` // creator|administrator|member|restricted|left|kicked
	User              *User  `json:"user,omitempty"`
	CanDeleteMessages bool   `json:"can_delete_messages,omitempty"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

func DisplayName(u *User) string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	case u.Username != "":
		return "@" + u.Username
	default:
		return ""
	}
}

func IsGroup(chatType string) bool {
	return chatType == "group" || chatType == "supergroup"
}
