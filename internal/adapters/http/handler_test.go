package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih/dockdash/internal/core/domain"
	"github.com/melih/dockdash/internal/dashboard"
)

type fakeSession struct {
	sent      []string
	fail      error
	connected bool
	err       error
}

func (f *fakeSession) record(action, id string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, action+" "+id)
	return nil
}

func (f *fakeSession) Start(id string) error  { return f.record("start", id) }
func (f *fakeSession) Stop(id string) error   { return f.record("stop", id) }
func (f *fakeSession) Remove(id string) error { return f.record("remove", id) }
func (f *fakeSession) Kill(id string) error   { return f.record("kill", id) }
func (f *fakeSession) Connected() bool        { return f.connected }
func (f *fakeSession) Err() error             { return f.err }

func newTestApp(t *testing.T) (*fiber.App, *dashboard.State, *fakeSession) {
	t.Helper()
	state := dashboard.NewState()
	require.NoError(t, state.Apply(domain.FullSync{
		Images: []domain.Image{{Id: "sha256:abc", RepoTags: []string{"nginx:latest"}}},
		Containers: []domain.Container{
			{ID: "c1", Name: "web", Image: "sha256:abc", State: domain.ContainerState{Running: true}, NetworkSettings: domain.NetworkSettings{IPAddress: "172.17.0.2"}},
			{ID: "c2", Name: "batch", Image: "sha256:zzz"},
		},
		HasImages:     true,
		HasContainers: true,
	}))
	session := &fakeSession{connected: true}
	app, err := NewApp(NewDashboardHandler(state, session, session), false)
	require.NoError(t, err)
	return app, state, session
}

func body(t *testing.T, app *fiber.App, method, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestPages(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, html := body(t, app, fiber.MethodGet, "/")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, `data-controller="DashboardController"`)
	assert.Contains(t, html, `<li class="active"><a href="/">Dashboard</a></li>`)
	assert.Contains(t, html, "1 of 2 containers running")
	assert.NotContains(t, html, "batch")

	status, html = body(t, app, fiber.MethodGet, "/containers")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, `data-controller="ContainerController"`)
	assert.Contains(t, html, `<li class="active"><a href="/containers">Containers</a></li>`)
	assert.Contains(t, html, "nginx:latest")
	assert.Contains(t, html, "batch")
	assert.Contains(t, html, `action="/containers/c1/stop"`)
	assert.Contains(t, html, `action="/containers/c2/start"`)

	status, html = body(t, app, fiber.MethodGet, "/images")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, html, `data-controller="ImagesController"`)
	assert.Contains(t, html, "nginx:latest")
	assert.NotContains(t, html, "Disconnected from backend")
}

func TestPages_UnknownRoute(t *testing.T) {
	app, _, _ := newTestApp(t)
	status, _ := body(t, app, fiber.MethodGet, "/volumes")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPages_DisconnectedBanner(t *testing.T) {
	app, _, session := newTestApp(t)
	session.connected = false
	session.err = errors.New("read frame: EOF")

	_, html := body(t, app, fiber.MethodGet, "/")
	assert.Contains(t, html, "Disconnected from backend: read frame: EOF")
	assert.Contains(t, html, "Restart the dashboard to reconnect.")
}

func TestCommand(t *testing.T) {
	app, _, session := newTestApp(t)

	for _, action := range []string{"start", "stop", "remove", "kill"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/containers/c1/"+action, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/containers", resp.Header.Get("Location"))
	}

	assert.Equal(t, []string{"start c1", "stop c1", "remove c1", "kill c1"}, session.sent)
}

func TestCommand_UnknownAction(t *testing.T) {
	app, _, session := newTestApp(t)

	status, out := body(t, app, fiber.MethodPost, "/containers/c1/pause")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, strings.Contains(out, "Unknown action"))
	assert.Empty(t, session.sent)
}

func TestCommand_SendFailure(t *testing.T) {
	app, _, session := newTestApp(t)
	session.fail = errors.New("session is not connected")

	status, out := body(t, app, fiber.MethodPost, "/containers/c1/start")
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Contains(t, out, "session is not connected")
}

func TestState(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, out := body(t, app, fiber.MethodGet, "/api/state")
	require.Equal(t, fiber.StatusOK, status)

	var resp struct {
		Connected  bool               `json:"connected"`
		Images     []domain.Image     `json:"images"`
		Containers []domain.Container `json:"containers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Connected)
	assert.Len(t, resp.Images, 1)
	assert.Len(t, resp.Containers, 2)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortID("sha256:0123456789abcdef"))
	assert.Equal(t, "c1", shortID("c1"))
}
