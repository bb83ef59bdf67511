package http

import "github.com/example/breakout-rooms/internal/event"

// eventDTO is the wire shape of an event. The password hash never leaves the
// service.
type eventDTO struct {
	EventID   string          `json:"eventId"`
	EventName string          `json:"eventName"`
	Users     []userDTO       `json:"users"`
	Rooms     []roomDTO       `json:"rooms"`
	RoomUsers []assignmentDTO `json:"roomUsers"`
	CreatedAt string          `json:"createdAt,omitempty"`
}

type userDTO struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type roomDTO struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

type assignmentDTO struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

type rosterDTO struct {
	Rooms      []roomRosterDTO `json:"rooms"`
	Unassigned []userDTO       `json:"unassigned"`
}

type roomRosterDTO struct {
	Room  roomDTO   `json:"room"`
	Users []userDTO `json:"users"`
}

func toEventDTO(ev event.Event) eventDTO {
	dto := eventDTO{
		EventID:   ev.ID,
		EventName: ev.Name,
		Users:     make([]userDTO, 0, len(ev.Users)),
		Rooms:     make([]roomDTO, 0, len(ev.Rooms)),
		RoomUsers: make([]assignmentDTO, 0, len(ev.Assignments)),
		CreatedAt: ev.CreatedAt,
	}
	for _, u := range ev.Users {
		dto.Users = append(dto.Users, userDTO{UserID: u.ID, UserName: u.Name})
	}
	for _, r := range ev.Rooms {
		dto.Rooms = append(dto.Rooms, roomDTO{RoomID: r.ID, RoomName: r.Name})
	}
	for _, a := range ev.Assignments {
		dto.RoomUsers = append(dto.RoomUsers, assignmentDTO{UserID: a.UserID, RoomID: a.RoomID})
	}
	return dto
}

func toRosterDTO(view event.RosterView) rosterDTO {
	dto := rosterDTO{
		Rooms:      make([]roomRosterDTO, 0, len(view.Rooms)),
		Unassigned: toUserDTOs(view.Unassigned),
	}
	for _, rr := range view.Rooms {
		dto.Rooms = append(dto.Rooms, roomRosterDTO{
			Room:  roomDTO{RoomID: rr.Room.ID, RoomName: rr.Room.Name},
			Users: toUserDTOs(rr.Users),
		})
	}
	return dto
}

func toUserDTOs(users []event.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, userDTO{UserID: u.ID, UserName: u.Name})
	}
	return out
}
