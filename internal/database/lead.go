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

// CreateLead files a lead with at-most-once semantics per conversation:
// the insert happens only when no lead exists for the conversation yet,
// and the stored lead's id is returned either way. A duplicate delivery
// of the same trigger cannot produce a second lead.
func (m *MongoDB) CreateLead(ctx context.Context, lead *entity.Lead) (string, error) {
	connection, err := m.connect()
	if err != nil {
		return "", err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(leadsCollection)

	filter := bson.M{"conversation_id": lead.ConversationID}
	update := bson.M{"$setOnInsert": lead}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored entity.Lead
	err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if err != nil {
		return "", fmt.Errorf("mongodb upsert error: %w", err)
	}
	return stored.ID, nil
}

// PromoteLead updates the lead's status, syncing contact details
// collected after the lead was filed. Empty name/phone are left alone.
func (m *MongoDB) PromoteLead(ctx context.Context, leadID, status, name, phone string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(leadsCollection)

	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if name != "" {
		set["customer_name"] = name
	}
	if phone != "" {
		set["customer_phone"] = phone
	}

	res, err := collection.UpdateOne(ctx, bson.M{"_id": leadID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("lead not found: %s", leadID)
	}
	return nil
}

// MarkLeadNotified records that the owner notification went out so a
// retry never double-sends.
func (m *MongoDB) MarkLeadNotified(ctx context.Context, leadID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(leadsCollection)

	update := bson.M{"$set": bson.M{
		"notification_sent": true,
		"updated_at":        time.Now().UTC(),
	}}
	_, err = collection.UpdateOne(ctx, bson.M{"_id": leadID}, update)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// GetLead loads one lead, nil when missing.
func (m *MongoDB) GetLead(ctx context.Context, leadID string) (*entity.Lead, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(leadsCollection)

	var lead entity.Lead
	err = collection.FindOne(ctx, bson.M{"_id": leadID}).Decode(&lead)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	return &lead, nil
}

// ListLeads returns a shop's leads, newest first. Status filters when
// non-empty.
func (m *MongoDB) ListLeads(ctx context.Context, shopID, status string, limit int64) ([]entity.Lead, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(leadsCollection)

	filter := bson.M{"shop_id": shopID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	var leads []entity.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("mongodb cursor error: %w", err)
	}
	return leads, nil
}
