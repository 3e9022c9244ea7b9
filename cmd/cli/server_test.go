package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"healthy"}`},
		{name: "other status field", status: http.StatusOK, body: `{"status":"starting"}`, wantErr: `server reported status "starting"`},
		{name: "not json", status: http.StatusOK, body: `<html>proxy</html>`, wantErr: "unexpected health response"},
		{name: "error status", status: http.StatusServiceUnavailable, body: `{"status":"healthy"}`, wantErr: "server unhealthy: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := healthServer(t, tt.status, tt.body)
			err := checkHealth(server.Client(), server.URL+"/")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWaitForServerReady(t *testing.T) {
	previous := serverURL
	defer func() { serverURL = previous }()

	serverURL = healthServer(t, http.StatusOK, `{"status":"healthy"}`).URL
	assert.NoError(t, waitForServerReady(time.Second))

	serverURL = healthServer(t, http.StatusOK, `{"status":"starting"}`).URL
	err := waitForServerReady(300 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"starting"`)
}

func TestServerCommand(t *testing.T) {
	previousURL, previousConfig := serverURL, configFile
	defer func() { serverURL, configFile = previousURL, previousConfig }()

	serverURL = "http://localhost:5055"
	configFile = "/etc/clipnest/config.yaml"

	cmd, err := serverCommand("/usr/local/bin/clipnest-server")
	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/local/bin/clipnest-server", "-config", "/etc/clipnest/config.yaml"}, cmd.Args)
	assert.Contains(t, cmd.Env, "CLIPNEST_SERVER_PORT=5055")
	assert.NotNil(t, cmd.SysProcAttr)

	serverURL = "localhost"
	_, err = serverCommand("/usr/local/bin/clipnest-server")
	assert.Error(t, err)
}
