package nats

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	natsgo "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"pokertable.io/server/game"
	"pokertable.io/server/logging"
)

var actionLogger = logging.GetZeroLogger("nats::actions", nil)

// PlayerAction is the message a player sends to table.<id>.action.
type PlayerAction struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
}

// ActionReply answers a PlayerAction when the sender asked for a reply.
type ActionReply struct {
	OK          bool             `json:"ok"`
	Kind        game.ErrorKind   `json:"kind,omitempty"`
	Message     string           `json:"message,omitempty"`
	PlayerToAct string           `json:"playerToAct,omitempty"`
	View        *game.PlayerView `json:"view,omitempty"`
}

// ActionHandler accepts player actions over NATS and submits them to the
// manager.
type ActionHandler struct {
	manager *game.Manager
	timeout time.Duration
	sub     *natsgo.Subscription
}

func NewActionHandler(manager *game.Manager) *ActionHandler {
	return &ActionHandler{manager: manager, timeout: 5 * time.Second}
}

func (h *ActionHandler) Subscribe(nc *natsgo.Conn) error {
	sub, err := nc.Subscribe(AllPlayer2TableSubjects, func(msg *natsgo.Msg) {
		reply := h.Handle(msg.Subject, msg.Data)
		if msg.Reply == "" {
			return
		}
		data, err := jsoniter.Marshal(reply)
		if err != nil {
			actionLogger.Error().Msgf("Unable to encode action reply: %v", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			actionLogger.Error().Str(logging.SubjectKey, msg.Reply).Msgf("Unable to send action reply: %v", err)
		}
	})
	if err != nil {
		actionLogger.Error().Msgf("Failed to subscribe to %s", AllPlayer2TableSubjects)
		return err
	}
	h.sub = sub
	return nil
}

func (h *ActionHandler) Unsubscribe() error {
	if h.sub == nil {
		return nil
	}
	return h.sub.Unsubscribe()
}

// Handle decodes and submits one action message.
func (h *ActionHandler) Handle(subject string, data []byte) ActionReply {
	tableID, ok := TableIDFromSubject(subject)
	if !ok {
		return ActionReply{Kind: game.KindInvalidGuid, Message: "Invalid subject " + subject}
	}
	var msg PlayerAction
	if err := jsoniter.Unmarshal(data, &msg); err != nil {
		return ActionReply{Kind: game.KindInvalidAction, Message: err.Error()}
	}
	action, err := game.ParseAction(msg.Action)
	if err != nil {
		return errorReply(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	view, err := h.manager.SubmitAction(ctx, tableID, msg.PlayerID, action)
	if err != nil {
		actionLogger.Debug().
			Str(logging.TableIDKey, tableID).
			Str(logging.PlayerIDKey, msg.PlayerID).
			Msgf("Action rejected: %v", err)
		return errorReply(err)
	}
	return ActionReply{OK: true, View: &view}
}

func errorReply(err error) ActionReply {
	reply := ActionReply{Message: err.Error()}
	reply.Kind, _ = game.KindOf(err)
	var notYourTurn game.NotYourTurnError
	if errors.As(err, &notYourTurn) {
		reply.PlayerToAct = notYourTurn.PlayerToAct
	}
	return reply
}
