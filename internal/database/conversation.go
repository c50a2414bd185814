package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"AutoLead/entity"
)

// Statuses that close a conversation and stamp completed_at.
func isTerminalStatus(status string) bool {
	switch status {
	case entity.ConvStatusCompleted, entity.ConvStatusAbandoned, entity.ConvStatusHandoff:
		return true
	}
	return false
}

// CreateConversation inserts the conversation row at dialog start.
func (m *MongoDB) CreateConversation(ctx context.Context, conv *entity.Conversation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	_, err = collection.InsertOne(ctx, conv)
	if err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

// SyncConversation upserts the denormalized dialog snapshot. Status and
// mode are only written when set, so a routine per-turn sync never
// clobbers an operator takeover.
func (m *MongoDB) SyncConversation(ctx context.Context, conv *entity.Conversation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	set := bson.M{
		"current_step":        conv.CurrentStep,
		"messages_count":      conv.MessagesCount,
		"last_message_at":     conv.LastMessageAt,
		"device_category":     conv.DeviceCategory,
		"device_brand":        conv.DeviceBrand,
		"device_model":        conv.DeviceModel,
		"problem_description": conv.ProblemDescription,
		"problem_category":    conv.ProblemCategory,
		"urgency":             conv.Urgency,
		"customer_name":       conv.CustomerName,
		"customer_phone":      conv.CustomerPhone,
		"preferred_time":      conv.PreferredTime,
		"estimated_price_min": conv.EstimatedPriceMin,
		"estimated_price_max": conv.EstimatedPriceMax,
		"price_confidence":    conv.PriceConfidence,
	}
	if conv.Status != "" {
		set["status"] = conv.Status
	}
	if conv.CompletedAt != nil {
		set["completed_at"] = conv.CompletedAt
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"shop_id":          conv.ShopID,
			"channel":          conv.Channel,
			"external_user_id": conv.ExternalUserID,
			"mode":             entity.ModeBot,
			"started_at":       conv.LastMessageAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, bson.M{"_id": conv.ID}, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// SetConversationStatus moves the conversation to status, stamping
// completed_at for terminal statuses.
func (m *MongoDB) SetConversationStatus(ctx context.Context, conversationID, status string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	set := bson.M{"status": status}
	if isTerminalStatus(status) {
		set["completed_at"] = time.Now().UTC()
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": conversationID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// SetConversationMode flips bot/human mode together with the matching
// status (takeover and release).
func (m *MongoDB) SetConversationMode(ctx context.Context, conversationID, mode, status string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	update := bson.M{"$set": bson.M{
		"mode":            mode,
		"status":          status,
		"last_message_at": time.Now().UTC(),
	}}

	res, err := collection.UpdateOne(ctx, bson.M{"_id": conversationID}, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("conversation not found: %s", conversationID)
	}
	return nil
}

// ConversationMode returns the current mode, empty when the
// conversation does not exist.
func (m *MongoDB) ConversationMode(ctx context.Context, conversationID string) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var result struct {
		Mode string `bson:"mode"`
	}
	err = collection.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("mongodb find error: %w", err)
	}
	return result.Mode, nil
}

// TouchConversation bumps last_message_at so the operator panel sorts
// the dialog to the top.
func (m *MongoDB) TouchConversation(ctx context.Context, conversationID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	update := bson.M{"$set": bson.M{"last_message_at": time.Now().UTC()}}
	_, err = collection.UpdateOne(ctx, bson.M{"_id": conversationID}, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// GetConversation loads one conversation, nil when missing.
func (m *MongoDB) GetConversation(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var conv entity.Conversation
	err = collection.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	return &conv, nil
}

// ListConversations returns a shop's dialogs, newest activity first.
// Status filters when non-empty.
func (m *MongoDB) ListConversations(ctx context.Context, shopID, status string, limit int64) ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.M{"shop_id": shopID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "last_message_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []entity.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb cursor error: %w", err)
	}
	return conversations, nil
}
