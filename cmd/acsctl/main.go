package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var (
	host       = flag.String("host", "localhost", "acsd control API host")
	port       = flag.Int("port", 8480, "acsd control API port")
	apiKey     = flag.String("key", "", "control API secret (if acsd has auth configured)")
	timeout    = flag.Duration("timeout", 10*time.Second, "request timeout")
	version    = flag.Bool("version", false, "Show version information")
	showStatus = flag.Bool("status", false, "Show the controller's current state")
	runNow     = flag.Bool("run", false, "Trigger a fresh ACS invocation and wait for the result")
	history    = flag.Bool("history", false, "Show recent completed invocations")
	stats      = flag.Bool("stats", false, "Show aggregate decision statistics")
	health     = flag.Bool("health", false, "Show daemon uptime and health")
	historyN   = flag.Int("limit", 20, "max rows returned by -history")
)

const (
	AppName    = "acsctl"
	AppVersion = "1.0.0"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", AppName, AppVersion)
		os.Exit(0)
	}

	client := &apiClient{
		baseURL: fmt.Sprintf("http://%s:%d", *host, *port),
		apiKey:  *apiKey,
		http:    &http.Client{Timeout: *timeout},
	}

	var (
		result map[string]interface{}
		err    error
	)
	switch {
	case *runNow:
		result, err = client.post("/api/run")
	case *history:
		result, err = client.get(fmt.Sprintf("/api/history?limit=%d", *historyN))
	case *stats:
		result, err = client.get("/api/stats")
	case *health:
		result, err = client.get("/api/health")
	case *showStatus:
		result, err = client.get("/api/status")
	default:
		result, err = client.get("/api/status")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "acsctl: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "acsctl: failed to format response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// apiClient is a thin wrapper over acsd's HTTP control API.
type apiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func (c *apiClient) get(path string) (map[string]interface{}, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *apiClient) post(path string) (map[string]interface{}, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *apiClient) do(req *http.Request) (map[string]interface{}, error) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("acsd returned %s: %s", resp.Status, string(body))
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return out, nil
}
