package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type MemberJoinedEvent struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

type MemberReadyEvent struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
	Ready  bool      `json:"ready"`
}

type TeamStartedEvent struct {
	TeamID    uuid.UUID `json:"team_id"`
	StartedAt time.Time `json:"started_at"`
}

type SubmissionJudgedEvent struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	UserID       uuid.UUID `json:"user_id"`
	Status       string    `json:"status"`
	Score        int       `json:"score"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Teams  map[uuid.UUID]bool
	Send   chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *TeamMessage
	mu         sync.RWMutex
}

type TeamMessage struct {
	TeamID uuid.UUID
	Event  Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *TeamMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.Teams[msg.TeamID] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) SubscribeToTeam(clientID string, teamID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Teams[teamID] = true
	}
}

func (h *Hub) UnsubscribeFromTeam(clientID string, teamID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Teams, teamID)
	}
}

func (h *Hub) BroadcastMemberJoined(teamID, userID uuid.UUID, name string) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "member_joined",
			Data: MemberJoinedEvent{
				TeamID: teamID,
				UserID: userID,
				Name:   name,
			},
		},
	}
}

func (h *Hub) BroadcastMemberReady(teamID, userID uuid.UUID, ready bool) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "member_ready",
			Data: MemberReadyEvent{
				TeamID: teamID,
				UserID: userID,
				Ready:  ready,
			},
		},
	}
}

func (h *Hub) BroadcastTeamStarted(teamID uuid.UUID, startedAt time.Time) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "team_started",
			Data: TeamStartedEvent{
				TeamID:    teamID,
				StartedAt: startedAt,
			},
		},
	}
}

func (h *Hub) BroadcastSubmissionJudged(teamID, submissionID, userID uuid.UUID, status string, score int) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "submission_judged",
			Data: SubmissionJudgedEvent{
				SubmissionID: submissionID,
				UserID:       userID,
				Status:       status,
				Score:        score,
			},
		},
	}
}
