package api_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deck-server/internal/api"
	"deck-server/internal/jobs"
)

func newHubServer(t *testing.T) (*api.JobHub, *httptest.Server) {
	t.Helper()
	logger := zap.NewNop()
	hub := api.NewJobHub(nil, logger)
	router := api.NewRouter(api.RouterConfig{
		Handler:   api.NewHandler(&fakeService{}, jobs.NewManager(jobs.Config{}, nil), &fakeWebhooks{}, hub, logger),
		JWTSecret: []byte(testSecret),
		Logger:    logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dialHub(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ppt/ws?token=" + signToken(t, userID)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestJobHub_DeliversOnlyToOwner(t *testing.T) {
	hub, srv := newHubServer(t)
	alice := dialHub(t, srv, "alice")
	bob := dialHub(t, srv, "bob")

	require.Eventually(t, func() bool {
		return hub.Connections("alice") == 1 && hub.Connections("bob") == 1
	}, time.Second, 10*time.Millisecond)

	hub.SendToUser("alice", "job_update", map[string]string{"status": "running"})

	var msg api.HubMessage
	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, alice.ReadJSON(&msg))
	assert.Equal(t, "job_update", msg.Type)
	assert.Equal(t, map[string]any{"status": "running"}, msg.Payload)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := bob.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's updates")
}

func TestJobHub_RejectsMissingToken(t *testing.T) {
	_, srv := newHubServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ppt/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJobHub_UnregistersClosedConnections(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialHub(t, srv, "alice")
	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections("alice") == 0 }, 2*time.Second, 10*time.Millisecond)

	// отправка пользователю без соединений ничего не ломает
	hub.SendToUser("alice", "job_update", nil)
}

func TestJobHub_CloseDisconnectsClients(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dialHub(t, srv, "alice")
	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Connections("alice"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
