package chatbot

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"portfolio-api/core/repository"
)

// Message kinds.
const (
	KindUser = "user"
	KindBot  = "bot"
)

// Message is one chat line, from the visitor or the bot.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Kind      string    `gorm:"size:10;not null" json:"type"`
	SessionID string    `gorm:"size:64;index;not null" json:"session_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name.
func (Message) TableName() string {
	return "chatbot_messages"
}

// Responses maps a keyword to the canned reply for messages containing it.
type Responses map[string]string

// Scan implements sql.Scanner.
func (r *Responses) Scan(src any) error {
	out := map[string]string{}
	if err := repository.ScanJSON(src, &out); err != nil {
		return err
	}
	*r = out
	return nil
}

// Value implements driver.Valuer.
func (r Responses) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	return repository.JSONValue(map[string]string(r))
}

// MarshalJSON never emits null.
func (r Responses) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(r))
}

// GormDataType stores the map as text.
func (Responses) GormDataType() string {
	return "text"
}

// BotConfig configures the chatbot. Only one active config is used.
type BotConfig struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	WelcomeMessage string    `gorm:"type:text" json:"welcome_message"`
	Responses      Responses `json:"responses"`
	Active         bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName overrides the table name.
func (BotConfig) TableName() string {
	return "chatbot_configs"
}

// MessageRequest is the body of POST /chatbot/message.
type MessageRequest struct {
	Message   string `json:"message" validate:"required,max=2000"`
	SessionID string `json:"session_id" validate:"omitempty,max=64"`
}

// Reply is the answer to a visitor message.
type Reply struct {
	Reply     string   `json:"reply"`
	SessionID string   `json:"session_id"`
	Message   *Message `json:"message"`
}

// ConfigInput is a partial config update.
type ConfigInput struct {
	Name           *string   `json:"name" validate:"omitempty,min=1,max=100"`
	WelcomeMessage *string   `json:"welcome_message"`
	Responses      Responses `json:"responses"`
	Active         *bool     `json:"active"`
}
