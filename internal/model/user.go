// Package model defines the data structures shared by the storage, service
// and HTTP layers.
package model

import "time"

// User is a person tracking their intake. Email is unique across users;
// the storage layer enforces it with a UNIQUE constraint.
type User struct {
	ID        int64     `json:"id"         db:"id"`
	Email     string    `json:"email"      db:"email"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
