package audit

import "time"

// Entry is the read-side view of one audit record, joined with the acting
// user when one exists.
type Entry struct {
	ID            int64     `json:"id"`
	UserID        *int64    `json:"user_id"`
	UserName      *string   `json:"user_name"`
	UserEmail     *string   `json:"user_email"`
	ActionType    string    `json:"action_type"`
	ActionDetails string    `json:"action_details"`
	ActionTime    time.Time `json:"action_time"`
}

type Page struct {
	Rows  []Entry `json:"rows"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

type Repository interface {
	Append(userID *int64, actionType, actionDetails string) error
	List(page, limit int, search string) (*Page, error)
}
