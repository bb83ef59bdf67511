package repository

import (
	"encoding/json"
	"fmt"

	"github.com/example/breakout-rooms/internal/event"
)

// eventDocument is the on-store shape of the event aggregate. The repository
// owns this schema; nothing outside the package reads or writes raw bodies.
type eventDocument struct {
	EventID      string            `json:"eventId"`
	EventName    string            `json:"eventName"`
	PasswordHash string            `json:"passwordHash"`
	Users        []userEntry       `json:"users"`
	Rooms        []roomEntry       `json:"rooms"`
	RoomUsers    []assignmentEntry `json:"roomUsers"`
	CreatedAt    string            `json:"createdAt"`
}

type userEntry struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type roomEntry struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

type assignmentEntry struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

func encodeEvent(ev event.Event) ([]byte, error) {
	doc := eventDocument{
		EventID:      ev.ID,
		EventName:    ev.Name,
		PasswordHash: ev.PasswordHash,
		CreatedAt:    ev.CreatedAt,
	}
	for _, u := range ev.Users {
		doc.Users = append(doc.Users, userEntry{UserID: u.ID, UserName: u.Name})
	}
	for _, r := range ev.Rooms {
		doc.Rooms = append(doc.Rooms, roomEntry{RoomID: r.ID, RoomName: r.Name})
	}
	for _, a := range ev.Assignments {
		doc.RoomUsers = append(doc.RoomUsers, assignmentEntry{UserID: a.UserID, RoomID: a.RoomID})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	return body, nil
}

func decodeEvent(body []byte) (event.Event, error) {
	var doc eventDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return event.Event{}, fmt.Errorf("decode event document: %w", err)
	}

	ev := event.Event{
		ID:           doc.EventID,
		Name:         doc.EventName,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}
	for _, u := range doc.Users {
		ev.Users = append(ev.Users, event.User{ID: u.UserID, Name: u.UserName})
	}
	for _, r := range doc.Rooms {
		ev.Rooms = append(ev.Rooms, event.Room{ID: r.RoomID, Name: r.RoomName})
	}
	for _, a := range doc.RoomUsers {
		ev.Assignments = append(ev.Assignments, event.Assignment{UserID: a.UserID, RoomID: a.RoomID})
	}
	return ev, nil
}
