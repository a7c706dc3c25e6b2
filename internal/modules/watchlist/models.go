// Package watchlist keeps the stocks that are re-analyzed on a schedule.
package watchlist

import "time"

// Item is one watched stock
type Item struct {
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Memo    string    `json:"memo"`
	AddedAt time.Time `json:"added_at"`
}
