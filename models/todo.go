package models

import "time"

type Todo struct {
	ID        int64     `json:"id" db:"id" bson:"_id"`
	UserID    int64     `json:"user_id" db:"user_id" bson:"user_id"`
	Title     string    `json:"title" db:"title" bson:"title"`
	Completed bool      `json:"completed" db:"completed" bson:"completed"`
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

// TodoPatch carries a partial todo update. Nil fields are left untouched.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}
