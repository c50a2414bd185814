package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"AutoLead/entity"
)

// GetShop loads one shop, nil when missing.
func (m *MongoDB) GetShop(ctx context.Context, shopID string) (*entity.Shop, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(shopsCollection)

	var shop entity.Shop
	err = collection.FindOne(ctx, bson.M{"_id": shopID}).Decode(&shop)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	return &shop, nil
}

// GetShopByBotName resolves the tenant an inbound Telegram update
// belongs to.
func (m *MongoDB) GetShopByBotName(ctx context.Context, botName string) (*entity.Shop, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(shopsCollection)

	var shop entity.Shop
	err = collection.FindOne(ctx, bson.M{
		"telegram_bot_name": botName,
		"is_active":         true,
	}).Decode(&shop)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	return &shop, nil
}

// GetShopByWhatsAppPhone resolves the tenant an inbound WhatsApp
// message belongs to.
func (m *MongoDB) GetShopByWhatsAppPhone(ctx context.Context, phoneNumberID string) (*entity.Shop, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(shopsCollection)

	var shop entity.Shop
	err = collection.FindOne(ctx, bson.M{
		"whatsapp_phone_id": phoneNumberID,
		"is_active":         true,
	}).Decode(&shop)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	return &shop, nil
}

// UpsertShop creates or updates a tenant record.
func (m *MongoDB) UpsertShop(ctx context.Context, shop *entity.Shop) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(shopsCollection)

	opts := options.Replace().SetUpsert(true)
	_, err = collection.ReplaceOne(ctx, bson.M{"_id": shop.ID}, shop, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}
	return nil
}
