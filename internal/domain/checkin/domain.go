package checkin

type Checkin struct {
	ID             string    `json:"id"`
	CreatedAt      int64     `json:"createdAt"`
	Type           string    `json:"type,omitempty"`
	Private        bool      `json:"private,omitempty"`
	Shout          string    `json:"shout,omitempty"`
	TimeZoneOffset int       `json:"timeZoneOffset,omitempty"`
	IsMayor        bool      `json:"isMayor,omitempty"`
	User           *User     `json:"user,omitempty"`
	Venue          *Venue    `json:"venue,omitempty"`
	Location       *Location `json:"location,omitempty"`
	Source         *Source   `json:"source,omitempty"`
	Comments       Comments  `json:"comments"`
	Likes          Likes     `json:"likes"`
}

// HasComment reports whether the checkin carries a comment with the given id.
func (c *Checkin) HasComment(commentID string) bool {
	for _, cm := range c.Comments.Items {
		if cm.ID == commentID {
			return true
		}
	}
	return false
}

type Comments struct {
	Count int              `json:"count"`
	Items []CheckinComment `json:"items"`
}

type Likes struct {
	Count int `json:"count"`
}

type CheckinComment struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	User      *User  `json:"user,omitempty"`
	Text      string `json:"text"`
}

type User struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Gender       string `json:"gender,omitempty"`
	HomeCity     string `json:"homeCity,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Photo        *Photo `json:"photo,omitempty"`
}

// Photo is a Foursquare image reference; the full URL is Prefix + size + Suffix.
type Photo struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

type Venue struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	URL        string     `json:"url,omitempty"`
	Verified   bool       `json:"verified,omitempty"`
	Location   *Location  `json:"location,omitempty"`
	Categories []Category `json:"categories"`
}

type Category struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PluralName string `json:"pluralName,omitempty"`
	ShortName  string `json:"shortName,omitempty"`
	Primary    bool   `json:"primary,omitempty"`
}

type Location struct {
	Name        string  `json:"name,omitempty"`
	Address     string  `json:"address,omitempty"`
	CrossStreet string  `json:"crossStreet,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	PostalCode  string  `json:"postalCode,omitempty"`
	Country     string  `json:"country,omitempty"`
	CC          string  `json:"cc,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
	Distance    int     `json:"distance,omitempty"`
}

// Source is the application the checkin was made from.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}
