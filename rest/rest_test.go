package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"pokertable.io/server/game"
	"pokertable.io/server/poker"
	"pokertable.io/server/scoring"
)

type constScorer struct{}

func (constScorer) Score(context.Context, []poker.Card) (scoring.Result, error) {
	return scoring.Result{Score: 1, Description: "anything"}, nil
}

type testServer struct {
	t       *testing.T
	manager *game.Manager
	hub     *Hub
	router  *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	m, err := game.NewManager(game.NewMemoryTableStore(), constScorer{}, game.DefaultTableConfig())
	require.NoError(t, err)
	hub := NewHub()
	m.AddListener(hub)
	return &testServer{t: t, manager: m, hub: hub, router: NewRouter(m, hub)}
}

func (s *testServer) do(req *http.Request, out interface{}) int {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if out != nil {
		require.NoError(s.t, jsoniter.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func (s *testServer) get(path string, query url.Values, out interface{}) int {
	req := httptest.NewRequest(http.MethodGet, path+"?"+query.Encode(), nil)
	return s.do(req, out)
}

func (s *testServer) postJSON(path string, body string, out interface{}) int {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *testServer) postForm(path string, form url.Values, out interface{}) int {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, out)
}

func (s *testServer) join(name string) joinResponse {
	var resp joinResponse
	code := s.postJSON("/join", `{"name":"`+name+`"}`, &resp)
	require.Equal(s.t, http.StatusOK, code)
	return resp
}

func TestJoin(t *testing.T) {
	s := newTestServer(t)
	first := s.join("a")
	assert.NotEmpty(t, first.GameID)
	assert.NotEmpty(t, first.PlayerID)
	assert.Equal(t, first.PlayerID, first.View.PlayerToAct)

	second := s.join("b")
	assert.Equal(t, first.GameID, second.GameID)
	assert.Len(t, second.View.Players, 2)

	var empty joinResponse
	req := httptest.NewRequest(http.MethodPost, "/join", nil)
	assert.Equal(t, http.StatusOK, s.do(req, &empty))
	assert.Equal(t, first.GameID, empty.GameID)

	var errResp errorResponse
	code := s.postJSON("/join", `{"playerId":"nope"}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, game.KindInvalidGuid, errResp.Kind)
	assert.Equal(t, "Error", errResp.Type)
}

func TestLegacyStatusFlow(t *testing.T) {
	s := newTestServer(t)

	// no game_guid: the status call seats the player
	var first legacyStatus
	require.Equal(t, http.StatusOK, s.get("/game/status", url.Values{}, &first))
	assert.NotEmpty(t, first.UserGUID)
	assert.Equal(t, "I", first.Stage)
	assert.Nil(t, first.UserPocketCards)
	assert.Equal(t, "", first.CommunityCards)

	var second legacyStatus
	require.Equal(t, http.StatusOK, s.get("/game/status", url.Values{"user_guid": {uuid.New().String()}}, &second))
	assert.Equal(t, first.GameGUID, second.GameGUID)

	for _, user := range []string{first.UserGUID, second.UserGUID} {
		var resp actionResponse
		code := s.postForm("/user/action", url.Values{
			"game_guid":   {first.GameGUID},
			"user_guid":   {user},
			"action_type": {"CALL_OR_CHECK"},
		}, &resp)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Success", resp.Type)
		assert.Equal(t, "Action completed.", resp.Message)
	}

	var dealt legacyStatus
	require.Equal(t, http.StatusOK, s.get("/game/status", url.Values{
		"game_guid": {first.GameGUID},
		"user_guid": {second.UserGUID},
	}, &dealt))
	assert.Equal(t, "P", dealt.Stage)
	require.NotNil(t, dealt.UserPocketCards)
	pocket, err := poker.ParseCards(*dealt.UserPocketCards)
	require.NoError(t, err)
	assert.Len(t, pocket, 2)
	assert.Equal(t, first.UserGUID, dealt.PlayerToAction)
}

func TestUserActionErrors(t *testing.T) {
	s := newTestServer(t)
	a := s.join("a")
	b := s.join("b")

	var errResp errorResponse
	code := s.postJSON("/user/action", `{"gameId":"`+a.GameID+`","playerId":"`+b.PlayerID+`","action":"BET"}`, &errResp)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, game.KindNotYourTurn, errResp.Kind)
	assert.Equal(t, a.PlayerID, errResp.PlayerToAct)

	errResp = errorResponse{}
	code = s.postJSON("/user/action", `{"gameId":"`+a.GameID+`","playerId":"`+a.PlayerID+`","action":"SHOVE"}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, game.KindInvalidAction, errResp.Kind)

	errResp = errorResponse{}
	code = s.postJSON("/user/action", `{"gameId":"`+uuid.New().String()+`","playerId":"`+a.PlayerID+`","action":"BET"}`, &errResp)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, game.KindTableNotFound, errResp.Kind)

	errResp = errorResponse{}
	code = s.postJSON("/user/action", `{"gameId":"`+a.GameID+`"}`, &errResp)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Error", errResp.Type)
}

func TestViewAndAdvance(t *testing.T) {
	s := newTestServer(t)
	a := s.join("a")
	b := s.join("b")

	var actions struct {
		Actions []game.Action `json:"actions"`
	}
	require.Equal(t, http.StatusOK, s.get("/game/actions", url.Values{"game_guid": {a.GameID}, "user_guid": {a.PlayerID}}, &actions))
	assert.Equal(t, game.AllActions, actions.Actions)

	for _, p := range []string{a.PlayerID, b.PlayerID} {
		require.Equal(t, http.StatusOK, s.postJSON("/user/action", `{"gameId":"`+a.GameID+`","playerId":"`+p+`","action":"CHECK"}`, nil))
	}

	// the view is a pure query
	var view game.PlayerView
	require.Equal(t, http.StatusOK, s.get("/game/view", url.Values{"game_guid": {a.GameID}}, &view))
	assert.Equal(t, game.StageInitial, view.Stage)

	view = game.PlayerView{}
	require.Equal(t, http.StatusOK, s.postJSON("/game/advance", `{"gameId":"`+a.GameID+`"}`, &view))
	assert.Equal(t, game.StagePocketDealt, view.Stage)
	assert.Nil(t, view.OwnPocketCards)

	view = game.PlayerView{}
	require.Equal(t, http.StatusOK, s.get("/game/view", url.Values{"game_guid": {a.GameID}, "user_guid": {b.PlayerID}}, &view))
	assert.Len(t, view.OwnPocketCards, 2)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, s.get("/game/view", url.Values{"game_guid": {"x"}}, &errResp))
	assert.Equal(t, game.KindInvalidGuid, errResp.Kind)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	s.join("a")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tables_created_total")
}

func readRaw(t *testing.T, ctx context.Context, conn *websocket.Conn) []byte {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	return data
}

func readView(t *testing.T, ctx context.Context, conn *websocket.Conn) game.PlayerView {
	t.Helper()
	var view game.PlayerView
	require.NoError(t, jsoniter.Unmarshal(readRaw(t, ctx, conn), &view))
	return view
}

func dialSubscribe(t *testing.T, ctx context.Context, serverURL string, tableID string, playerID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/game/subscribe?" +
		url.Values{"game_guid": {tableID}, "user_guid": {playerID}}.Encode()
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	return conn
}

// cardTokens is the wire form of a card list.
func cardTokens(cards []poker.Card) string {
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = `"` + c.String() + `"`
	}
	return "[" + strings.Join(tokens, ",") + "]"
}

func TestSubscribe(t *testing.T) {
	s := newTestServer(t)
	a := s.join("a")
	b := s.join("b")
	server := httptest.NewServer(s.router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialSubscribe(t, ctx, server.URL, a.GameID, b.PlayerID)
	defer conn.Close(websocket.StatusNormalClosure, "")

	initial := readView(t, ctx, conn)
	assert.Equal(t, a.GameID, initial.GameID)
	assert.Equal(t, b.PlayerID, initial.PlayerID)
	// subscribed before the initial view was written
	assert.Equal(t, 1, s.hub.subscriberCount(a.GameID))

	_, err := s.manager.SubmitAction(ctx, a.GameID, a.PlayerID, game.ActionBet)
	require.NoError(t, err)

	updated := readView(t, ctx, conn)
	assert.Equal(t, b.PlayerID, updated.PlayerToAct)
	assert.Greater(t, updated.Version, initial.Version)
}

func TestSubscribeUnknownTable(t *testing.T) {
	s := newTestServer(t)
	var errResp errorResponse
	code := s.get("/game/subscribe", url.Values{"game_guid": {uuid.New().String()}}, &errResp)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, game.KindTableNotFound, errResp.Kind)
	assert.Empty(t, s.hub.subscribers)
}

func TestSubscribeKeepsChangeDuringInitialRead(t *testing.T) {
	s := newTestServer(t)
	a := s.join("a")
	b := s.join("b")

	server := &Server{manager: s.manager, hub: s.hub}
	server.status = func(ctx context.Context, tableID string, playerID string) (game.PlayerView, error) {
		view, err := s.manager.Status(ctx, tableID, playerID)
		if err != nil {
			return view, err
		}
		// committed after the initial view was read
		_, err = s.manager.SubmitAction(ctx, tableID, a.PlayerID, game.ActionBet)
		return view, err
	}
	httpServer := httptest.NewServer(server.routes())
	defer httpServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn := dialSubscribe(t, ctx, httpServer.URL, a.GameID, b.PlayerID)
	defer conn.Close(websocket.StatusNormalClosure, "")

	initial := readView(t, ctx, conn)
	assert.Equal(t, a.PlayerID, initial.PlayerToAct)
	updated := readView(t, ctx, conn)
	assert.Equal(t, b.PlayerID, updated.PlayerToAct)
	assert.Greater(t, updated.Version, initial.Version)
}

func TestSubscribeSendsCardTokens(t *testing.T) {
	s := newTestServer(t)
	a := s.join("a")
	b := s.join("b")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, id := range []string{a.PlayerID, b.PlayerID} {
		_, err := s.manager.SubmitAction(ctx, a.GameID, id, game.ActionCallOrCheck)
		require.NoError(t, err)
	}
	_, err := s.manager.Advance(ctx, a.GameID)
	require.NoError(t, err)

	server := httptest.NewServer(s.router)
	defer server.Close()
	conn := dialSubscribe(t, ctx, server.URL, a.GameID, b.PlayerID)
	defer conn.Close(websocket.StatusNormalClosure, "")

	snapshot, err := s.manager.Snapshot(ctx, a.GameID)
	require.NoError(t, err)
	data := string(readRaw(t, ctx, conn))
	assert.Contains(t, data, `"ownPocketCards":`+cardTokens(snapshot.PocketCards[1]))
	assert.Contains(t, data, `"communityCards":[]`)
	assert.NotContains(t, data, cardTokens(snapshot.PocketCards[0]))
}
