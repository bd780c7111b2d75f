package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pokertable.io/server/game"
	"pokertable.io/server/logging"
	"pokertable.io/server/poker"
)

var restLogger = logging.GetZeroLogger("rest::rest", nil)

type Server struct {
	manager *game.Manager
	hub     *Hub
	// status reads the view a new subscriber starts from
	status func(ctx context.Context, tableID string, playerID string) (game.PlayerView, error)
}

func NewRouter(manager *game.Manager, hub *Hub) *gin.Engine {
	s := &Server{manager: manager, hub: hub, status: manager.Status}
	return s.routes()
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/join", s.join)
	r.GET("/game/status", s.gameStatus)
	r.GET("/game/view", s.gameView)
	r.POST("/game/advance", s.advance)
	r.GET("/game/actions", s.availableActions)
	r.POST("/user/action", s.userAction)
	r.GET("/game/subscribe", s.subscribe)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// RunRestServer serves until ctx is cancelled.
func RunRestServer(ctx context.Context, addr string, manager *game.Manager, hub *Hub) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(manager, hub),
	}
	errCh := make(chan error, 1)
	go func() {
		restLogger.Info().Msgf("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type joinRequest struct {
	PlayerID string `json:"playerId" form:"user_guid"`
	Name     string `json:"name" form:"name"`
}

type joinResponse struct {
	GameID   string          `json:"gameId"`
	PlayerID string          `json:"playerId"`
	View     game.PlayerView `json:"view"`
}

func (s *Server) join(c *gin.Context) {
	var req joinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	view, err := s.manager.Join(c.Request.Context(), game.Player{ID: req.PlayerID, Name: req.Name})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, joinResponse{
		GameID:   view.GameID,
		PlayerID: view.PlayerID,
		View:     view,
	})
}

// legacyStatus is the response of GET /game/status: cards are flattened
// into the pipe form and the stage is a single letter.
type legacyStatus struct {
	GameGUID        string  `json:"game_guid"`
	UserGUID        string  `json:"user_guid,omitempty"`
	Stage           string  `json:"stage"`
	PlayerToAction  string  `json:"player_to_action"`
	CommunityCards  string  `json:"community_cards"`
	UserPocketCards *string `json:"user_pocket_cards"`
}

func newLegacyStatus(view game.PlayerView, userGUID string) legacyStatus {
	status := legacyStatus{
		GameGUID:       view.GameID,
		UserGUID:       userGUID,
		Stage:          string(view.Stage.Code()),
		PlayerToAction: view.PlayerToAct,
		CommunityCards: poker.JoinCards(view.CommunityCards),
	}
	if view.OwnPocketCards != nil {
		pocket := poker.JoinCards(view.OwnPocketCards)
		status.UserPocketCards = &pocket
	}
	return status
}

// gameStatus joins a table when no game_guid is given, moves the table on
// if its betting round is over and reports the requester's view.
func (s *Server) gameStatus(c *gin.Context) {
	ctx := c.Request.Context()
	gameGUID := c.Query("game_guid")
	userGUID := c.Query("user_guid")

	if gameGUID == "" {
		view, err := s.manager.Join(ctx, game.Player{ID: userGUID})
		if err != nil {
			abortWithError(c, err)
			return
		}
		gameGUID = view.GameID
		userGUID = view.PlayerID
	}

	view, err := s.manager.Poll(ctx, gameGUID, userGUID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLegacyStatus(view, userGUID))
}

func (s *Server) gameView(c *gin.Context) {
	view, err := s.manager.Status(c.Request.Context(), c.Query("game_guid"), c.Query("user_guid"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type advanceRequest struct {
	GameID string `json:"gameId" form:"game_guid" binding:"required"`
}

func (s *Server) advance(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	if _, err := s.manager.Advance(ctx, req.GameID); err != nil {
		abortWithError(c, err)
		return
	}
	view, err := s.manager.Status(ctx, req.GameID, "")
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) availableActions(c *gin.Context) {
	actions, err := s.manager.AvailableActions(c.Request.Context(), c.Query("game_guid"), c.Query("user_guid"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

type actionRequest struct {
	GameID   string `json:"gameId" form:"game_guid" binding:"required"`
	PlayerID string `json:"playerId" form:"user_guid" binding:"required"`
	Action   string `json:"action" form:"action_type" binding:"required"`
}

type actionResponse struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	View    game.PlayerView `json:"view"`
}

func (s *Server) userAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	action, err := game.ParseAction(req.Action)
	if err != nil {
		abortWithError(c, err)
		return
	}
	view, err := s.manager.SubmitAction(c.Request.Context(), req.GameID, req.PlayerID, action)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, actionResponse{Type: "Success", Message: "Action completed.", View: view})
}
