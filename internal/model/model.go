package model

import "time"

// Memo is a titled markdown note.
//
// Timestamps are milliseconds since the Unix epoch so the persisted JSON stays
// a flat array of numbers and strings.
type Memo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// UnixMilli converts t to the timestamp representation used by Memo.
func UnixMilli(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func (m Memo) Created() time.Time { return time.UnixMilli(m.CreatedAt).UTC() }
func (m Memo) Updated() time.Time { return time.UnixMilli(m.UpdatedAt).UTC() }
