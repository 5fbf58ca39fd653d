package domain

import "time"

// Feedback is a single like/dislike vote on a generated video.
type Feedback struct {
	VideoID   string
	Liked     bool
	Country   string
	CreatedAt time.Time
}
