package event

// Roster folds the event's assignments into a mapping from room id to the
// user ids currently in that room. Every room appears in the result even when
// empty, and users without an assignment are grouped under UnassignedRoomID.
// The fold is recomputed from the full aggregate on every call; callers
// refresh their event after mutating and derive again.
func Roster(e Event) map[string][]string {
	roster := make(map[string][]string, len(e.Rooms)+1)
	roster[UnassignedRoomID] = nil
	for _, room := range e.Rooms {
		roster[room.ID] = nil
	}

	assigned := make(map[string]string, len(e.Assignments))
	for _, a := range e.Assignments {
		assigned[a.UserID] = a.RoomID
	}

	// Iterate users rather than assignments so the per-room ordering follows
	// registration order.
	for _, user := range e.Users {
		roomID, ok := assigned[user.ID]
		if !ok {
			roomID = UnassignedRoomID
		}
		roster[roomID] = append(roster[roomID], user.ID)
	}
	return roster
}

// RoomRoster pairs a room with the users currently assigned to it.
type RoomRoster struct {
	Room  Room
	Users []User
}

// RosterView is the display-oriented roster: rooms with resolved user
// entries, plus the pool of users not assigned anywhere.
type RosterView struct {
	Rooms      []RoomRoster
	Unassigned []User
}

// GroupedRoster resolves Roster's id mapping into user entries grouped per
// room, in the event's room order.
func GroupedRoster(e Event) RosterView {
	byID := make(map[string]User, len(e.Users))
	for _, user := range e.Users {
		byID[user.ID] = user
	}
	resolve := func(ids []string) []User {
		if len(ids) == 0 {
			return nil
		}
		users := make([]User, 0, len(ids))
		for _, id := range ids {
			if user, ok := byID[id]; ok {
				users = append(users, user)
			}
		}
		return users
	}

	roster := Roster(e)
	view := RosterView{Unassigned: resolve(roster[UnassignedRoomID])}
	for _, room := range e.Rooms {
		view.Rooms = append(view.Rooms, RoomRoster{Room: room, Users: resolve(roster[room.ID])})
	}
	return view
}
