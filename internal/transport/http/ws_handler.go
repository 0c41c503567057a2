package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// WSHandler plays quiz sessions over a websocket: one request, one reply.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler returns a handler serving sessions of service.
func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &WSHandler{
		service: service,
		logger:  logger,
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

type loginPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loggedInPayload struct {
	Username    string             `json:"username"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	AccountType domain.AccountType `json:"accountType"`
}

type answerPayload struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

type answerResult struct {
	QuestionID int `json:"questionId"`
	TotalScore int `json:"totalScore"`
}

type editPayload struct {
	ID     int                   `json:"id"`
	Update domain.QuestionUpdate `json:"update"`
}

type removePayload struct {
	ID int `json:"id"`
}

type searchPayload struct {
	Keyword string `json:"keyword"`
}

type finishedPayload struct {
	Result  domain.LeaderboardEntry `json:"result"`
	Message string                  `json:"message"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// Set by a successful login on this connection only.
	loggedIn := false
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		var reply outboundMessage[any]
		switch {
		case inbound.Type == "login":
			reply = h.handle(r, inbound)
			loggedIn = loggedIn || reply.Type == "loggedIn"
		case !loggedIn && inbound.Type != "search":
			reply = errorMessage(domain.ErrLoginRequired.Error())
		default:
			reply = h.handle(r, inbound)
		}
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("ws write error", "err", err)
			return
		}
	}
}

func (h *WSHandler) handle(r *http.Request, inbound inboundMessage) outboundMessage[any] {
	ctx := r.Context()
	switch inbound.Type {
	case "login":
		var p loginPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errorMessage("invalid login payload")
		}
		user, err := h.service.Login(ctx, p.Username, p.Email, p.Password)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "loggedIn", Payload: loggedInPayload{
			Username:    user.Username(),
			FirstName:   user.FirstName(),
			LastName:    user.LastName(),
			AccountType: user.AccountType(),
		}}
	case "start":
		var p domain.StartOptions
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errorMessage("invalid start payload")
		}
		questions, err := h.service.StartQuiz(p)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "questions", Payload: questions}
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errorMessage("invalid answer payload")
		}
		total := h.service.SubmitAnswer(p.QuestionID, p.Answer)
		return outboundMessage[any]{Type: "answerResult", Payload: answerResult{QuestionID: p.QuestionID, TotalScore: total}}
	case "finish":
		result, err := h.service.FinishQuiz(ctx)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "finished", Payload: finishedPayload{Result: result, Message: result.String()}}
	case "search":
		var p searchPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errorMessage("invalid search payload")
		}
		return outboundMessage[any]{Type: "questions", Payload: h.service.SearchQuestions(p.Keyword)}
	case "addQuestion":
		var q domain.Question
		if err := json.Unmarshal(inbound.Payload, &q); err != nil {
			return errorMessage("invalid question payload")
		}
		return okOrError(h.service.AddQuestion(q))
	case "editQuestion":
		var p editPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errorMessage("invalid edit payload")
		}
		return okOrError(h.service.EditQuestion(p.ID, p.Update))
	case "removeQuestion":
		var p removePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			return errorMessage("invalid remove payload")
		}
		return okOrError(h.service.RemoveQuestion(p.ID))
	default:
		return errorMessage("unsupported message type")
	}
}

func okOrError(err error) outboundMessage[any] {
	if err != nil {
		return errorMessage(err.Error())
	}
	return outboundMessage[any]{Type: "ok", Payload: struct{}{}}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
