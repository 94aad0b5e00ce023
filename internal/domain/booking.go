package domain

import "time"

const BookingConfirmedMessage = "Your booking has been confirmed! Please pay after visiting."

// BookingRecord is the snapshot of a property taken when a user confirms a booking.
type BookingRecord struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Property  Property  `json:"property" bson:"property"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
