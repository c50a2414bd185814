package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"AutoLead/entity"
)

// ActivePriceRules returns a shop's active rules ordered by priority
// descending, ready for the resolver.
func (m *MongoDB) ActivePriceRules(ctx context.Context, shopID string) ([]entity.PriceRule, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(priceRulesCollection)

	filter := bson.M{"shop_id": shopID, "is_active": true}
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []entity.PriceRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("mongodb cursor error: %w", err)
	}
	return rules, nil
}

// UpsertPriceRule creates or replaces a rule by id.
func (m *MongoDB) UpsertPriceRule(ctx context.Context, rule *entity.PriceRule) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(priceRulesCollection)

	opts := options.Replace().SetUpsert(true)
	_, err = collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}
	return nil
}
