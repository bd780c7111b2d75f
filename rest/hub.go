package rest

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"nhooyr.io/websocket"
	"pokertable.io/server/game"
	"pokertable.io/server/logging"
)

var hubLogger = logging.GetZeroLogger("rest::hub", nil)

const subscriberBuffer = 8

type subscriber struct {
	playerID string
	views    chan game.PlayerView
}

// Hub fans table changes out to websocket subscribers. Every subscriber
// receives the view of its own player only.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) subscribe(tableID string, playerID string) *subscriber {
	sub := &subscriber{playerID: playerID, views: make(chan game.PlayerView, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[tableID] == nil {
		h.subscribers[tableID] = make(map[*subscriber]struct{})
	}
	h.subscribers[tableID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(tableID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers[tableID], sub)
	if len(h.subscribers[tableID]) == 0 {
		delete(h.subscribers, tableID)
	}
}

// TableChanged never blocks: a subscriber that falls behind loses its
// oldest pending view.
func (h *Hub) TableChanged(t *game.Table) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers[t.ID] {
		view := game.ViewFor(t, sub.playerID)
		select {
		case sub.views <- view:
		default:
			select {
			case <-sub.views:
			default:
			}
			sub.views <- view
		}
	}
}

func (h *Hub) subscriberCount(tableID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[tableID])
}

func (s *Server) subscribe(c *gin.Context) {
	tableID := c.Query("game_guid")
	playerID := c.Query("user_guid")

	// Subscribe before reading the initial view so no change committed in
	// between is lost. Views older than the initial one are skipped below.
	sub := s.hub.subscribe(tableID, playerID)
	defer s.hub.unsubscribe(tableID, sub)
	view, err := s.status(c.Request.Context(), tableID, playerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		logging.ForTable(hubLogger, tableID, playerID).Error().Msgf("Unable to accept websocket: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	// reads are not expected; CloseRead cancels ctx when the peer goes away
	ctx := conn.CloseRead(c.Request.Context())
	if err := writeView(ctx, conn, view); err != nil {
		return
	}
	lastVersion := view.Version
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case view := <-sub.views:
			if view.Version <= lastVersion {
				continue
			}
			lastVersion = view.Version
			if err := writeView(ctx, conn, view); err != nil {
				logging.ForTable(hubLogger, tableID, playerID).Debug().Msgf("Subscriber gone: %v", err)
				return
			}
		}
	}
}

func writeView(ctx context.Context, conn *websocket.Conn, view game.PlayerView) error {
	data, err := jsoniter.Marshal(view)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
