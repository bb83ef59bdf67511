package event

import "fmt"

// Validate checks the aggregate's internal consistency: unique user ids, no
// assignment that references an unknown user or room, and at most one
// assignment per user. Repositories enforce these rules on every mutation;
// Validate exists so callers and tests can assert them on any snapshot.
func Validate(e Event) error {
	users := make(map[string]struct{}, len(e.Users))
	for _, user := range e.Users {
		if _, ok := users[user.ID]; ok {
			return fmt.Errorf("event %s: duplicate user %s", e.ID, user.ID)
		}
		users[user.ID] = struct{}{}
	}

	rooms := make(map[string]struct{}, len(e.Rooms))
	for _, room := range e.Rooms {
		if room.ID == UnassignedRoomID {
			return fmt.Errorf("event %s: room with empty id", e.ID)
		}
		if _, ok := rooms[room.ID]; ok {
			return fmt.Errorf("event %s: duplicate room %s", e.ID, room.ID)
		}
		rooms[room.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(e.Assignments))
	for _, a := range e.Assignments {
		if _, ok := users[a.UserID]; !ok {
			return fmt.Errorf("event %s: assignment references unknown user %s", e.ID, a.UserID)
		}
		if _, ok := rooms[a.RoomID]; !ok {
			return fmt.Errorf("event %s: assignment references unknown room %s", e.ID, a.RoomID)
		}
		if _, ok := seen[a.UserID]; ok {
			return fmt.Errorf("event %s: user %s assigned to more than one room", e.ID, a.UserID)
		}
		seen[a.UserID] = struct{}{}
	}
	return nil
}
