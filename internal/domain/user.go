package domain

import "time"

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Session is the server-side half of a sign-in. It expires after an idle period.
type Session struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	LastSeen time.Time `json:"lastSeen"`
}

// Claims are the fields carried by an access token.
type Claims struct {
	UserID    string
	Email     string
	SessionID string
}
