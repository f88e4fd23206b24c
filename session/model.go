package session

// Slot names a persisted session value.
type Slot string

const (
	// SlotToken holds the opaque bearer token.
	SlotToken Slot = "token"
	// SlotUser holds the JSON-encoded [Identity].
	SlotUser Slot = "user"
	// SlotAdmin holds the JSON-encoded [AdminIdentity] from the admin login pathway.
	SlotAdmin Slot = "admin"
)

// AllSlots lists every slot owned by a session.
var AllSlots = []Slot{SlotToken, SlotUser, SlotAdmin}

// Identity is the user record returned by the backend on login and by the
// current-user endpoint.
type Identity struct {
	ID         int64    `json:"id"`
	Nom        string   `json:"nom"`
	Prenom     string   `json:"prenom"`
	Email      string   `json:"email"`
	Competence []string `json:"competence"`
	Interests  []string `json:"interests"`
	Role       string   `json:"role,omitempty"`
}

// AdminIdentity is the record returned by the admin login endpoint.
type AdminIdentity struct {
	ID     int64  `json:"id"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
}

// Session is a point-in-time view of the persisted session. Absent parts are nil
// or empty.
type Session struct {
	Token    string
	Identity *Identity
	Admin    *AdminIdentity
}

// HasToken reports whether a token is present.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// Authenticated reports whether the session carries a token and at least one
// identity record.
func (s Session) Authenticated() bool {
	return s.Token != "" && (s.Identity != nil || s.Admin != nil)
}
