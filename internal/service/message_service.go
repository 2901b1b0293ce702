package service

import (
	"context"
	"unicode/utf8"

	"talenta/internal/models"
	"talenta/internal/notifications"
	"talenta/internal/repository"
	"talenta/internal/validation"
)

const hireInquiryPrefix = "Hi! I'm interested in hiring you for your services. "

// MessageService handles direct messages and hire inquiries.
type MessageService struct {
	messages      repository.MessageRepository
	profiles      repository.ProfileRepository
	notifications *NotificationService
	publisher     EventPublisher
}

func NewMessageService(
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	notifications *NotificationService,
	publisher EventPublisher,
) *MessageService {
	return &MessageService{
		messages:      messages,
		profiles:      profiles,
		notifications: notifications,
		publisher:     publisherOrNoop(publisher),
	}
}

// Conversations groups the caller's messages by partner, most recent first.
// Only messages addressed to the caller count as unread.
func (s *MessageService) Conversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byPartner := make(map[uint]*models.Conversation)
	out := make([]*models.Conversation, 0)
	for _, m := range msgs {
		partnerID := m.PartnerOf(userID)
		conv, ok := byPartner[partnerID]
		if !ok {
			// Messages arrive newest first, so the first one seen is the latest.
			conv = &models.Conversation{PartnerID: partnerID, LastMessage: m}
			byPartner[partnerID] = conv
			out = append(out, conv)
		}
		if m.ReceiverID == userID && !m.Read {
			conv.UnreadCount++
		}
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uint, len(out))
	for i, c := range out {
		ids[i] = c.PartnerID
	}
	partners, err := s.profiles.GetSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		c.Partner = partners[c.PartnerID]
	}
	return out, nil
}

// History returns the thread with partnerID oldest first and marks the
// partner's messages to the caller as read.
func (s *MessageService) History(ctx context.Context, userID, partnerID uint) ([]models.Message, error) {
	if partnerID == 0 || partnerID == userID {
		return nil, models.NewValidationError("Invalid conversation partner")
	}
	msgs, err := s.messages.History(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}

	marked, err := s.messages.MarkReadFrom(ctx, partnerID, userID)
	if err != nil {
		return nil, err
	}
	if marked > 0 {
		for i := range msgs {
			if msgs[i].SenderID == partnerID && msgs[i].ReceiverID == userID {
				msgs[i].Read = true
			}
		}
		publish(ctx, s.publisher, partnerID, notifications.EventMessagesRead,
			notifications.MessagesReadPayload{ReaderID: userID, Count: marked})
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// Send stores a message and pushes it to both participants.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	content, err := validation.RequiredText("content", content, validation.MaxMessageLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if receiverID == 0 || receiverID == senderID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	exists, err := s.profiles.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Profile", receiverID)
	}

	msg := &models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, receiverID, notifications.EventMessageCreated, msg)
	publish(ctx, s.publisher, senderID, notifications.EventMessageCreated, msg)
	return msg, nil
}

// HireInquiry messages a hireable creator and notifies them.
func (s *MessageService) HireInquiry(ctx context.Context, senderID, creatorID uint, message string) (*models.Message, error) {
	if creatorID == senderID {
		return nil, models.NewValidationError("You cannot hire yourself")
	}
	creator, err := s.profiles.GetByID(ctx, creatorID, senderID)
	if err != nil {
		return nil, err
	}
	if !creator.Hireable {
		return nil, models.NewValidationError("This creator is not available for hire")
	}
	message, err = validation.RequiredText("message", message, validation.MaxMessageLength-utf8.RuneCountInString(hireInquiryPrefix))
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg, err := s.Send(ctx, senderID, creatorID, hireInquiryPrefix+message)
	if err != nil {
		return nil, err
	}
	s.notifications.notifyQuietly(ctx, &models.Notification{
		UserID:        creatorID,
		Type:          models.NotificationMessage,
		Title:         "New Hire Inquiry",
		Message:       "Someone is interested in hiring you!",
		RelatedUserID: uintPtr(senderID),
	})
	return msg, nil
}
