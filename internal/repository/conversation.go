package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devnet/internal/model"
)

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// orderPair normalizes an unordered user pair to (low, high) so that both
// (A,B) and (B,A) address the same row.
func orderPair(userA, userB int64) (int64, int64) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}

func (r *conversationRepository) Find(ctx context.Context, userA, userB int64) (*model.Conversation, error) {
	low, high := orderPair(userA, userB)

	query := `SELECT * FROM conversations WHERE user_low_id = $1 AND user_high_id = $2`
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, query, low, high)
	if err == sql.ErrNoRows {
		return nil, model.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &conv, nil
}

// Create inserts the conversation for the pair. The unique index on
// (user_low_id, user_high_id) turns a lost race into ErrConversationExists,
// which callers handle by re-fetching.
func (r *conversationRepository) Create(ctx context.Context, userA, userB int64) (*model.Conversation, error) {
	low, high := orderPair(userA, userB)

	query := `
		INSERT INTO conversations (user_low_id, user_high_id)
		VALUES ($1, $2)
		RETURNING id, user_low_id, user_high_id, created_at
	`
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, query, low, high)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, model.ErrConversationExists
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	query := `SELECT * FROM conversations WHERE id = $1`
	var conv model.Conversation
	err := r.db.GetContext(ctx, &conv, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID int64) ([]model.Conversation, error) {
	query := `
		SELECT * FROM conversations
		WHERE user_low_id = $1 OR user_high_id = $1
		ORDER BY created_at DESC, id DESC
	`
	var convs []model.Conversation
	err := r.db.SelectContext(ctx, &convs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

func (r *conversationRepository) InsertMessage(ctx context.Context, conversationID, senderID int64, body string) (*model.Message, error) {
	query := `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, conversation_id, sender_id, body, created_at
	`
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, query, conversationID, senderID, body)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

func (r *conversationRepository) MessagesFor(ctx context.Context, conversationID int64) ([]model.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.body, m.created_at,
		       u.username, p.avatar_url
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		JOIN profiles p ON p.user_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`
	rows, err := r.db.QueryxContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var msg model.Message
		var username, avatarURL string
		err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Body, &msg.CreatedAt, &username, &avatarURL)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Sender = &model.UserSummary{ID: msg.SenderID, Username: username, AvatarURL: avatarURL}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// LastMessages returns the newest message of each conversation in one query,
// for chat list previews.
func (r *conversationRepository) LastMessages(ctx context.Context, conversationIDs []int64) (map[int64]model.Message, error) {
	if len(conversationIDs) == 0 {
		return map[int64]model.Message{}, nil
	}

	query := `
		SELECT DISTINCT ON (conversation_id)
		       id, conversation_id, sender_id, body, created_at
		FROM messages
		WHERE conversation_id = ANY($1)
		ORDER BY conversation_id, created_at DESC, id DESC
	`
	var messages []model.Message
	err := r.db.SelectContext(ctx, &messages, query, pq.Array(conversationIDs))
	if err != nil {
		return nil, fmt.Errorf("get last messages: %w", err)
	}

	result := make(map[int64]model.Message, len(messages))
	for _, m := range messages {
		result[m.ConversationID] = m
	}
	return result, nil
}
