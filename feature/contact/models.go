package contact

import "time"

// Message is a contact form submission.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:254;not null" json:"email"`
	Phone     string    `gorm:"size:30;not null" json:"phone"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Notified  bool      `gorm:"not null;default:false" json:"notified"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name.
func (Message) TableName() string {
	return "contact_messages"
}

// Request is the body of POST /contact.
type Request struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" form:"phone" validate:"required,phone"`
	Message string `json:"message" form:"message" validate:"required,max=5000"`
}
