package checkin

import "context"

// Endpoint is the path prefix of the checkins resource, relative to the API base URL.
const Endpoint = "checkins/"

// Operations is the checkins capability of the Foursquare API.
type Operations interface {
	// Get fetches a checkin. signature is optional; an empty value sends the
	// same request as an unsigned fetch.
	Get(ctx context.Context, checkinID, signature string) (*Checkin, error)
	// Add checks the authenticated user in. Not idempotent.
	Add(ctx context.Context, params CheckinParams) (*Checkin, error)
	// GetRecent lists recent checkins from the user's friends in server order.
	GetRecent(ctx context.Context, q RecentQuery) ([]Checkin, error)
	AddComment(ctx context.Context, checkinID, text string) (*CheckinComment, error)
	// DeleteComment removes a comment made by the authenticated user and
	// returns the checkin without it.
	DeleteComment(ctx context.Context, checkinID, commentID string) (*Checkin, error)
	// Reply sends a private reply to the checkin owner. An application may
	// reply only once per checkin.
	Reply(ctx context.Context, checkinID, text, replyURL, contentID string) (string, error)
}
