package model

import "time"

// Course は公開されているコースリスティングを表す。
// OwnerID は作成時に確定し、以降変更されない。
type Course struct {
	ID          string
	Title       string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
