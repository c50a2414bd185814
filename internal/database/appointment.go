package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"AutoLead/entity"
)

// CreateAppointment books a visit slot for a lead.
func (m *MongoDB) CreateAppointment(ctx context.Context, appt *entity.Appointment) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(appointmentsCollection)

	_, err = collection.InsertOne(ctx, appt)
	if err != nil {
		return fmt.Errorf("mongodb insert error: %w", err)
	}
	return nil
}

// ListAppointments returns a shop's upcoming appointments in schedule
// order.
func (m *MongoDB) ListAppointments(ctx context.Context, shopID string, limit int64) ([]entity.Appointment, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(appointmentsCollection)

	filter := bson.M{"shop_id": shopID}
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []entity.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("mongodb cursor error: %w", err)
	}
	return appointments, nil
}

// SetAppointmentStatus confirms, cancels or completes a slot.
func (m *MongoDB) SetAppointmentStatus(ctx context.Context, appointmentID, status string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(appointmentsCollection)

	res, err := collection.UpdateOne(ctx,
		bson.M{"_id": appointmentID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("appointment not found: %s", appointmentID)
	}
	return nil
}
