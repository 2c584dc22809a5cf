package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Protocol-Lattice/dreamsearch/handler"
	"github.com/Protocol-Lattice/dreamsearch/internal/config"
	"github.com/Protocol-Lattice/dreamsearch/render"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCmd_Plain(t *testing.T) {
	out, err := execute(t, "", "render", "!level:error", "id:[1,2]")
	require.NoError(t, err)
	assert.Equal(t, "!level:error id:[1,2]\n", out)
}

func TestRenderCmd_DefaultsToPlainOffTerminal(t *testing.T) {
	out, err := execute(t, "", "render", "age:>-24h")
	require.NoError(t, err)
	assert.Equal(t, "age:>-24h\n", out)
}

func TestRenderCmd_Stdin(t *testing.T) {
	out, err := execute(t, "(a:(b:1))\n", "render", "--style", "plain")
	require.NoError(t, err)
	assert.Equal(t, "(a:(b:1))\n", out)
}

func TestRenderCmd_HTML(t *testing.T) {
	out, err := execute(t, "", "render", "--style", "html", "level:error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `<span class="dq-filter">`))
}

func TestRenderCmd_Width(t *testing.T) {
	out, err := execute(t, "", "render", "--width", "8", "level:error browser:chrome")
	require.NoError(t, err)
	assert.Equal(t, "level:e…\n", out)
}

func TestRenderCmd_UnknownStyle(t *testing.T) {
	_, err := execute(t, "", "render", "--style", "neon", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown style")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dreamsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRenderCmd_ConfigStyle(t *testing.T) {
	path := writeConfig(t, "style: html\n")

	out, err := execute(t, "", "--config", path, "render", "level:error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `<span class="dq-filter">`), out)

	out, err = execute(t, "", "--config", path, "render", "--style", "plain", "level:error")
	require.NoError(t, err)
	assert.Equal(t, "level:error\n", out, "the flag wins over the config file")
}

func TestRenderCmd_EnvStyle(t *testing.T) {
	t.Setenv("DREAMSEARCH_STYLE", "html")
	out, err := execute(t, "", "-c", filepath.Join(t.TempDir(), "absent.yaml"), "render", "a")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<span"), out)
}

func TestRenderCmd_ConfigUnknownStyle(t *testing.T) {
	path := writeConfig(t, "style: neon\n")
	_, err := execute(t, "", "--config", path, "render", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown style")
}

func TestConfigInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "dreamsearch.yaml")

	out, err := execute(t, "", "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", out)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())

	_, err = execute(t, "", "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(path, []byte("addr: \":1\"\n"), 0644))
	_, err = execute(t, "", "config", "init", "--force", "--config", path)
	require.NoError(t, err)
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestRenderCmd_BadLogLevel(t *testing.T) {
	_, err := execute(t, "", "--log-level", "loud", "render", "a")
	assert.Error(t, err)
}

func TestUnitsCmd(t *testing.T) {
	out, err := execute(t, "", "units", "count:>10ms")
	require.NoError(t, err)

	var units []render.Unit
	require.NoError(t, yaml.Unmarshal([]byte(out), &units))
	require.Len(t, units, 1)
	assert.Equal(t, render.KindFilter, units[0].Kind)
	assert.Equal(t, "count:>10ms", render.Text(units))
	assert.Contains(t, out, "kind: numeral")
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "short", truncateWidth("short", 10))
	assert.Equal(t, "unlimited text", truncateWidth("unlimited text", 0))
	assert.Equal(t, "abcd…", truncateWidth("abcdefghij", 5))

	styled := "\x1b[1mabcdefghij\x1b[0m"
	got := truncateWidth(styled, 5)
	assert.Equal(t, 5, ansi.PrintableRuneWidth(got))
}

func TestRunServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, ln, handler.New().Routes(), time.Second, nil)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/render?q=a:b&style=plain")
	require.NoError(t, err)
	var got handler.RenderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, "a:b", got.Text)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeCmd_InvalidConfig(t *testing.T) {
	t.Setenv("DREAMSEARCH_LOG_LEVEL", "loud")
	_, err := execute(t, "", "serve", "--config", t.TempDir()+"/absent.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestServeCmd_UnknownStyle(t *testing.T) {
	path := writeConfig(t, "addr: \"127.0.0.1:0\"\nstyle: neon\n")
	_, err := execute(t, "", "serve", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
	assert.Contains(t, err.Error(), "unknown style")
}
