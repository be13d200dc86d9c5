package checkin

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/NordCoder/checkins/internal/domain"
)

const (
	MaxShoutLen     = 140
	MaxContentIDLen = 50
)

type Broadcast string

const (
	BroadcastPrivate   Broadcast = "private"
	BroadcastPublic    Broadcast = "public"
	BroadcastFacebook  Broadcast = "facebook"
	BroadcastTwitter   Broadcast = "twitter"
	BroadcastFollowers Broadcast = "followers"
)

func (b Broadcast) valid() bool {
	switch b {
	case BroadcastPrivate, BroadcastPublic, BroadcastFacebook, BroadcastTwitter, BroadcastFollowers:
		return true
	}
	return false
}

// CheckinParams describes a new checkin. It is consumed once per Add call.
type CheckinParams struct {
	VenueID   string
	EventID   string
	Shout     string
	Mentions  string
	Broadcast []Broadcast

	Latitude         *float64
	Longitude        *float64
	LLAccuracy       *float64
	Altitude         *float64
	AltitudeAccuracy *float64
}

// At sets the user's coordinates.
func (p CheckinParams) At(lat, lng float64) CheckinParams {
	p.Latitude, p.Longitude = &lat, &lng
	return p
}

func (p CheckinParams) Validate() error {
	if strings.TrimSpace(p.VenueID) == "" {
		return domain.Invalid("venueId is required")
	}
	if utf8.RuneCountInString(p.Shout) > MaxShoutLen {
		return domain.Invalid("shout exceeds %d characters", MaxShoutLen)
	}
	for _, b := range p.Broadcast {
		if !b.valid() {
			return domain.Invalid("unknown broadcast %q", b)
		}
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return domain.Invalid("latitude and longitude must be set together")
	}
	if p.Latitude == nil && (p.LLAccuracy != nil || p.Altitude != nil || p.AltitudeAccuracy != nil) {
		return domain.Invalid("accuracy and altitude require coordinates")
	}
	return nil
}

// Values encodes the params as the form fields of checkins/add.
func (p CheckinParams) Values() url.Values {
	v := url.Values{}
	v.Set("venueId", p.VenueID)
	setIf(v, "eventId", p.EventID)
	setIf(v, "shout", p.Shout)
	setIf(v, "mentions", p.Mentions)
	if len(p.Broadcast) > 0 {
		parts := make([]string, 0, len(p.Broadcast))
		for _, b := range p.Broadcast {
			parts = append(parts, string(b))
		}
		v.Set("broadcast", strings.Join(parts, ","))
	}
	if p.Latitude != nil && p.Longitude != nil {
		v.Set("ll", formatLL(*p.Latitude, *p.Longitude))
	}
	setFloat(v, "llAcc", p.LLAccuracy)
	setFloat(v, "alt", p.Altitude)
	setFloat(v, "altAcc", p.AltitudeAccuracy)
	return v
}

// RecentQuery filters checkins/recent. Nil fields are left to the server.
type RecentQuery struct {
	Latitude       *float64
	Longitude      *float64
	AfterTimestamp *int64
	Limit          *int
}

func (q RecentQuery) Validate() error {
	if (q.Latitude == nil) != (q.Longitude == nil) {
		return domain.Invalid("latitude and longitude must be set together")
	}
	if q.Limit != nil && *q.Limit < 0 {
		return domain.Invalid("limit must be >= 0")
	}
	if q.AfterTimestamp != nil && *q.AfterTimestamp < 0 {
		return domain.Invalid("afterTimestamp must be >= 0")
	}
	return nil
}

func (q RecentQuery) Values() url.Values {
	v := url.Values{}
	if q.Latitude != nil && q.Longitude != nil {
		v.Set("ll", formatLL(*q.Latitude, *q.Longitude))
	}
	if q.AfterTimestamp != nil {
		v.Set("afterTimestamp", strconv.FormatInt(*q.AfterTimestamp, 10))
	}
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	return v
}

var replySchemes = map[string]struct{}{
	"http":       {},
	"https":      {},
	"foursquare": {},
	"mailto":     {},
	"tel":        {},
	"sms":        {},
}

// ValidateReply checks the arguments of a checkin reply.
func ValidateReply(text, replyURL, contentID string) error {
	if strings.TrimSpace(text) == "" {
		return domain.Invalid("reply text is required")
	}
	if contentID != "" && replyURL == "" {
		return domain.Invalid("contentId requires a url")
	}
	if utf8.RuneCountInString(contentID) > MaxContentIDLen {
		return domain.Invalid("contentId exceeds %d characters", MaxContentIDLen)
	}
	if replyURL == "" {
		return nil
	}
	u, err := url.Parse(replyURL)
	if err != nil {
		return domain.Invalid("reply url: %v", err)
	}
	if _, ok := replySchemes[strings.ToLower(u.Scheme)]; !ok {
		return domain.Invalid("reply url scheme %q is not supported", u.Scheme)
	}
	return nil
}

func formatLL(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, strconv.FormatFloat(*f, 'f', -1, 64))
	}
}
