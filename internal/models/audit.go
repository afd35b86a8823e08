package models

import (
	"encoding/json"
	"time"
)

// Audit actions
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// AuditLog is an append-only before/after snapshot of one mutation
type AuditLog struct {
	ID         int64           `db:"id" json:"id"`
	RecordType string          `db:"record_type" json:"record_type"`
	RecordID   int64           `db:"record_id" json:"record_id"`
	Action     string          `db:"action" json:"action"`
	ActorID    int64           `db:"actor_id" json:"actor_id"`
	ActorName  string          `db:"actor_name" json:"actor_name"`
	Remarks    string          `db:"remarks" json:"remarks"`
	Before     json.RawMessage `db:"before_snapshot" json:"before,omitempty"`
	After      json.RawMessage `db:"after_snapshot" json:"after,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// User is a back-office login account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	Role         string    `db:"role" json:"role"`
	Status       int       `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}
