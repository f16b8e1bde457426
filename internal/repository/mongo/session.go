package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/aura-chat/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type messageDocument struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	Timestamp time.Time `bson:"timestamp"`
}

type sessionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	SessionID string             `bson:"sessionId"`
	Messages  []messageDocument  `bson:"messages"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d sessionDocument) toDomain() (*domain.ChatSession, error) {
	messages := make([]domain.Message, 0, len(d.Messages))
	for i, m := range d.Messages {
		role, err := domain.ParseRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("session %s message %d: %w", d.SessionID, i, err)
		}
		messages = append(messages, domain.Message{
			Role:      role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	return &domain.ChatSession{
		ID:        d.ID.Hex(),
		OwnerID:   d.UserID,
		SessionID: d.SessionID,
		Messages:  messages,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func toMessageDocuments(messages []domain.Message) []messageDocument {
	docs := make([]messageDocument, 0, len(messages))
	for _, m := range messages {
		docs = append(docs, messageDocument{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return docs
}

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{coll: db.Database.Collection(chatsCollection)}
}

// Create inserts the session as a single document
func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	doc := sessionDocument{
		ID:        primitive.NewObjectID(),
		UserID:    session.OwnerID,
		SessionID: session.SessionID,
		Messages:  toMessageDocuments(session.Messages),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	session.ID = doc.ID.Hex()
	return nil
}

// GetOwned retrieves a session by its public id and owner
func (r *SessionRepository) GetOwned(ctx context.Context, sessionID, ownerID string) (*domain.ChatSession, error) {
	var doc sessionDocument
	err := r.coll.FindOne(ctx, ownedFilter(sessionID, ownerID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return doc.toDomain()
}

// AppendMessages pushes messages onto the transcript in one update.
// $push with $each is atomic per document, so concurrent appends on the
// same session both land and each batch stays contiguous.
func (r *SessionRepository) AppendMessages(ctx context.Context, sessionID, ownerID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": toMessageDocuments(messages)}},
		"$set":  bson.M{"updatedAt": messages[len(messages)-1].Timestamp},
	}

	res, err := r.coll.UpdateOne(ctx, ownedFilter(sessionID, ownerID), update)
	if err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func ownedFilter(sessionID, ownerID string) bson.M {
	return bson.M{"sessionId": sessionID, "userId": ownerID}
}
