package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"trivia-session-service/internal/app"
	"trivia-session-service/internal/domain"
)

type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	CollectionID string `json:"collectionId"`
	UserID       int64  `json:"userId"`
	Adaptive     bool   `json:"adaptive"`
}

type answerPayload struct {
	SessionID      string  `json:"sessionId"`
	QuestionID     string  `json:"questionId"`
	SelectedOption *string `json:"selectedOption"`
	TimeRemaining  float64 `json:"timeRemaining"`
	Wager          *int    `json:"wager,omitempty"`
}

type resultsPayload struct {
	SessionID string `json:"sessionId"`
}

// wireOption and wireQuestion hide which option is correct.
type wireOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type wireQuestion struct {
	ID              string       `json:"id"`
	Prompt          string       `json:"prompt"`
	Options         []wireOption `json:"options"`
	Difficulty      string       `json:"difficulty"`
	DurationSeconds float64      `json:"durationSeconds"`
}

type sessionStarted struct {
	SessionID  string                `json:"sessionId"`
	Collection domain.CollectionMeta `json:"collection"`
	Questions  []wireQuestion        `json:"questions"`
	Adaptive   bool                  `json:"adaptive"`
	Degraded   bool                  `json:"degraded"`
}

// wireAnswer is the client-facing answer record. The server-internal flag
// field stays off the wire.
type wireAnswer struct {
	QuestionID     string        `json:"questionId"`
	SelectedOption *string       `json:"selectedOption"`
	TimeRemaining  float64       `json:"timeRemaining"`
	ResponseTime   float64       `json:"responseTime"`
	Correct        bool          `json:"correct"`
	BasePoints     int           `json:"basePoints"`
	SpeedBonus     int           `json:"speedBonus"`
	TotalPoints    int           `json:"totalPoints"`
	Wager          *int          `json:"wager,omitempty"`
	NextQuestion   *wireQuestion `json:"nextQuestion,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the connection and drives the session use cases. All
// writes happen from this goroutine, so no write pump is needed.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.CollectionID == "" {
				h.sendError(conn, "invalid start payload")
				continue
			}
			session, degraded, err := h.service.StartSession(r.Context(), payload.UserID, payload.CollectionID, payload.Adaptive)
			if err != nil {
				h.sendError(conn, userMessage(err))
				continue
			}
			h.send(conn, "session", sessionStarted{
				SessionID:  session.ID,
				Collection: session.Collection,
				Questions:  toWireQuestions(session.Questions),
				Adaptive:   session.Adaptive != nil,
				Degraded:   degraded,
			})

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SessionID == "" || payload.QuestionID == "" {
				h.sendError(conn, "invalid answer payload")
				continue
			}
			answer, next, err := h.service.SubmitAnswer(r.Context(), payload.SessionID, payload.QuestionID, payload.SelectedOption, payload.TimeRemaining, payload.Wager)
			if err != nil {
				h.sendError(conn, userMessage(err))
				continue
			}
			h.send(conn, "answerResult", toWireAnswer(answer, next))

		case "results":
			var payload resultsPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SessionID == "" {
				h.sendError(conn, "invalid results payload")
				continue
			}
			results, err := h.service.Results(r.Context(), payload.SessionID)
			if err != nil {
				h.sendError(conn, userMessage(err))
				continue
			}
			h.send(conn, "results", results)

		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) send(conn *websocket.Conn, msgType string, payload any) {
	if err := conn.WriteJSON(outboundMessage[any]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	h.send(conn, "error", errorPayload{Message: message})
}

// userMessage maps domain errors to client-safe text; anything unexpected is
// masked to avoid leaking internals.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrCollectionNotFound),
		errors.Is(err, domain.ErrQuestionNotInSession),
		errors.Is(err, domain.ErrWagerNotAllowed),
		errors.Is(err, domain.ErrInvalidWager),
		errors.Is(err, domain.ErrWagerTooLarge):
		return err.Error()
	default:
		log.Printf("ws internal error: %v", err)
		return "internal error"
	}
}

func toWireQuestions(questions []domain.Question) []wireQuestion {
	out := make([]wireQuestion, 0, len(questions))
	for _, q := range questions {
		wq := toWireQuestion(q)
		out = append(out, *wq)
	}
	return out
}

func toWireQuestion(q domain.Question) *wireQuestion {
	options := make([]wireOption, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, wireOption{ID: opt.ID, Text: opt.Text})
	}
	return &wireQuestion{
		ID:              q.ID,
		Prompt:          q.Prompt,
		Options:         options,
		Difficulty:      q.Difficulty,
		DurationSeconds: q.DurationSeconds,
	}
}

func toWireAnswer(a domain.Answer, next *domain.Question) wireAnswer {
	wa := wireAnswer{
		QuestionID:     a.QuestionID,
		SelectedOption: a.SelectedOption,
		TimeRemaining:  a.TimeRemaining,
		ResponseTime:   a.ResponseTime,
		Correct:        a.Correct,
		BasePoints:     a.BasePoints,
		SpeedBonus:     a.SpeedBonus,
		TotalPoints:    a.TotalPoints,
		Wager:          a.Wager,
	}
	if next != nil {
		wa.NextQuestion = toWireQuestion(*next)
	}
	return wa
}
