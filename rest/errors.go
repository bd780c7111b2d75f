package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"pokertable.io/server/game"
)

type errorResponse struct {
	Type        string         `json:"type"`
	Kind        game.ErrorKind `json:"kind,omitempty"`
	Message     string         `json:"message"`
	PlayerToAct string         `json:"playerToAct,omitempty"`
}

var kindStatus = map[game.ErrorKind]int{
	game.KindInvalidGuid:        http.StatusBadRequest,
	game.KindInvalidAction:      http.StatusBadRequest,
	game.KindTableNotFound:      http.StatusNotFound,
	game.KindNotYourTurn:        http.StatusConflict,
	game.KindScoringPending:     http.StatusConflict,
	game.KindTableHalted:        http.StatusConflict,
	game.KindTableFull:          http.StatusConflict,
	game.KindExhaustedDeck:      http.StatusInternalServerError,
	game.KindScoringUnavailable: http.StatusServiceUnavailable,
}

func abortWithError(c *gin.Context, err error) {
	resp := errorResponse{Type: "Error", Message: err.Error()}
	status := http.StatusInternalServerError
	if kind, ok := game.KindOf(err); ok {
		resp.Kind = kind
		if s, ok := kindStatus[kind]; ok {
			status = s
		}
	}
	var notYourTurn game.NotYourTurnError
	if errors.As(err, &notYourTurn) {
		resp.PlayerToAct = notYourTurn.PlayerToAct
	}
	if status >= http.StatusInternalServerError {
		restLogger.Error().Str("path", c.FullPath()).Msgf("Request failed: %v", err)
	}
	c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Type: "Error", Message: message})
}
