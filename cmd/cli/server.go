package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
	healthyStatus      = "healthy"
)

// checkHealth requires a 200 with {"status":"healthy"} from /api/health
func checkHealth(client *http.Client, baseURL string) error {
	resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload); err != nil {
		return fmt.Errorf("unexpected health response: %w", err)
	}
	if payload.Status != healthyStatus {
		return fmt.Errorf("server reported status %q", payload.Status)
	}
	return nil
}

func isServerRunning() bool {
	return checkHealth(&http.Client{Timeout: time.Second}, serverURL) == nil
}

// serverCandidates lists where the server binary is looked for, in order
func serverCandidates() []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), serverBinaryName))
	}
	if p, err := exec.LookPath(serverBinaryName); err == nil {
		paths = append(paths, p)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, "go", "bin", serverBinaryName),
			filepath.Join(home, ".local", "bin", serverBinaryName))
	}
	return paths
}

func findServerBinary() (string, error) {
	for _, p := range serverCandidates() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s not found next to the CLI, on PATH or in ~/go/bin", serverBinaryName)
}

// serverCommand builds the server command line. The port of --server is
// passed through CLIPNEST_SERVER_PORT so the server listens where the CLI polls.
func serverCommand(path string) (*exec.Cmd, error) {
	target, err := url.Parse(serverURL)
	if err != nil || target.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", serverURL)
	}

	cmd := exec.Command(path)
	if configFile != "" {
		cmd.Args = append(cmd.Args, "-config", configFile)
	}
	cmd.Env = os.Environ()
	if port := target.Port(); port != "" {
		cmd.Env = append(cmd.Env, "CLIPNEST_SERVER_PORT="+port)
	}
	setSysProcAttr(cmd)
	return cmd, nil
}

func startServerBackground() error {
	path, err := findServerBinary()
	if err != nil {
		return err
	}
	cmd, err := serverCommand(path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", path, err)
	}

	// reap the child without blocking the CLI
	go cmd.Wait()
	return nil
}

// waitForServerReady polls the health endpoint until it reports healthy
func waitForServerReady(timeout time.Duration) error {
	client := &http.Client{Timeout: time.Second}
	deadline := time.Now().Add(timeout)

	var lastErr error
	for time.Now().Before(deadline) {
		if lastErr = checkHealth(client, serverURL); lastErr == nil {
			return nil
		}
		time.Sleep(serverPollInterval)
	}
	return fmt.Errorf("server not healthy after %v: %v", timeout, lastErr)
}

// ensureServerRunning starts the server when the health check fails
func ensureServerRunning() error {
	if isServerRunning() {
		return nil
	}

	fmt.Fprintln(os.Stderr, "Server not running, starting...")
	if err := startServerBackground(); err != nil {
		return err
	}
	if err := waitForServerReady(serverStartTimeout); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Server started")
	return nil
}
