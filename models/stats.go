package models

// Stats is the admin overview of stored data.
type Stats struct {
	Users     int64 `json:"users"`
	Admins    int64 `json:"admins"`
	Todos     int64 `json:"todos"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}
