package event

// UnassignedRoomID is the roster bucket for users that have no room
// assignment. It is never a valid Room.ID.
const UnassignedRoomID = ""

// User represents a registered participant of an event.
type User struct {
	ID   string
	Name string
}

// Room represents a named grouping bucket users can be assigned to.
type Room struct {
	ID   string
	Name string
}

// Assignment records the room a user currently occupies. A user without an
// assignment sits in the unassigned pool.
type Assignment struct {
	UserID string
	RoomID string
}

// Event is the aggregate for one breakout-room session. The whole aggregate
// lives in a single store document keyed by ID.
type Event struct {
	ID           string
	Name         string
	PasswordHash string
	Users        []User
	Rooms        []Room
	Assignments  []Assignment
	CreatedAt    string
}

// HasUser reports whether the user id is registered on the event.
func (e Event) HasUser(userID string) bool {
	_, ok := e.UserByID(userID)
	return ok
}

// HasRoom reports whether the room id belongs to the event.
func (e Event) HasRoom(roomID string) bool {
	for _, room := range e.Rooms {
		if room.ID == roomID {
			return true
		}
	}
	return false
}

// UserByID returns the registered user with the given id.
func (e Event) UserByID(userID string) (User, bool) {
	for _, user := range e.Users {
		if user.ID == userID {
			return user, true
		}
	}
	return User{}, false
}

// WithUser returns a copy of the event with the user appended. Registration
// is idempotent: an already present user id leaves the event unchanged.
func (e Event) WithUser(user User) Event {
	if e.HasUser(user.ID) {
		return e
	}
	out := e.Clone()
	out.Users = append(out.Users, user)
	return out
}

// WithAssignment returns a copy of the event with the user's assignment
// upserted. A user id holds at most one assignment; assigning to
// UnassignedRoomID removes any existing entry.
func (e Event) WithAssignment(userID, roomID string) Event {
	out := e.Clone()
	filtered := out.Assignments[:0]
	for _, a := range out.Assignments {
		if a.UserID != userID {
			filtered = append(filtered, a)
		}
	}
	out.Assignments = filtered
	if roomID != UnassignedRoomID {
		out.Assignments = append(out.Assignments, Assignment{UserID: userID, RoomID: roomID})
	}
	return out
}

// Clone returns a copy of the event whose slices share no backing arrays
// with the original.
func (e Event) Clone() Event {
	out := e
	out.Users = append([]User(nil), e.Users...)
	out.Rooms = append([]Room(nil), e.Rooms...)
	out.Assignments = append([]Assignment(nil), e.Assignments...)
	return out
}
