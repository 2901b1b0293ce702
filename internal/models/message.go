package models

import "time"

// Message is a direct message between two profiles.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_receiver_read" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Read       bool      `gorm:"not null;default:false;index:idx_messages_receiver_read" json:"read"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// Conversation groups the messages exchanged with one partner.
type Conversation struct {
	PartnerID   uint     `json:"partner_id"`
	Partner     *Profile `json:"partner,omitempty"`
	LastMessage Message  `json:"last_message"`
	UnreadCount int      `json:"unread_count"`
}

// PartnerOf returns the id of the other participant from me's point of view.
func (m Message) PartnerOf(me uint) uint {
	if m.SenderID == me {
		return m.ReceiverID
	}
	return m.SenderID
}
