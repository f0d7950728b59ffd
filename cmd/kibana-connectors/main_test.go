package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mykobyhub/kibana-connectors/pkg/json"
)

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salesforce.yaml")
	content := `name: crm
type: salesforce
reliability:
  retry_attempts: 1
  retry_delay: 1ms
observability:
  log_level: error
security:
  credentials:
    domain: fake
    client_id: "1234"
    client_secret: from-file
    base_url: ` + baseURL + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// newEmptyOrg serves a token and a global describe with nothing queryable.
func newEmptyOrg(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "token", "token_type": "Bearer"})
	})
	mux.HandleFunc("/services/data/v59.0/sobjects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sobjects": []}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(viper.New())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "https://example.test")
	t.Setenv("KC_CLIENT_SECRET", "from-env")
	t.Setenv("KC_SOBJECTS", "case,lead")

	vip := viper.New()
	vip.Set("config", path)
	cfg, err := loadConfig(vip)
	require.NoError(t, err)

	assert.Equal(t, "crm", cfg.Name)
	assert.Equal(t, "fake", cfg.Security.Credentials["domain"])
	assert.Equal(t, "from-env", cfg.Security.Credentials["client_secret"])
	assert.Equal(t, "case,lead", cfg.Security.Credentials["sobjects"])
	assert.Equal(t, time.Millisecond, cfg.Reliability.RetryDelay)
	assert.Equal(t, "none", cfg.Advanced.CompressionAlgorithm)
}

func TestLoadConfigErrors(t *testing.T) {
	vip := viper.New()
	vip.Set("config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := loadConfig(vip)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "unknown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: hubspot\n"), 0o600))
	vip.Set("config", path)
	_, err = loadConfig(vip)
	assert.ErrorContains(t, err, "hubspot")
}

func TestVersionAndList(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, cmdName+" v"+version)

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "salesforce")
	assert.Contains(t, out, "client_secret")
	assert.Contains(t, out, "json")
}

func TestValidateAndPing(t *testing.T) {
	server := newEmptyOrg(t)
	path := writeConfig(t, server.URL)

	out, err := execute(t, "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	out, err = execute(t, "ping", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestSync(t *testing.T) {
	server := newEmptyOrg(t)
	path := writeConfig(t, server.URL)
	output := filepath.Join(t.TempDir(), "docs.jsonl")

	out, err := execute(t, "sync", "-c", path, "-o", output, "--omit", "_attachment")
	require.NoError(t, err)
	assert.Contains(t, out, "0 documents written")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestServeRejectsNonPositiveInterval(t *testing.T) {
	server := newEmptyOrg(t)
	path := writeConfig(t, server.URL)

	_, err := execute(t, "serve", "-c", path, "--interval", "0s")
	assert.ErrorContains(t, err, "interval")
}

func TestPassOutput(t *testing.T) {
	opts := &serveOptions{outputDir: "out"}
	at := time.Date(2023, 8, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("out", "crm-20230801T123000Z.jsonl"), opts.passOutput("crm", at))
}
