// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatus_Properties(t *testing.T) {
	cmd := NewStatusCmd()

	if cmd.Use != "status" {
		t.Errorf("Use = %q, want %q", cmd.Use, "status")
	}

	if !strings.Contains(cmd.Short, "health") {
		t.Error("Short description should mention health")
	}

	if !strings.Contains(cmd.Long, "liveness") {
		t.Error("Long description should mention liveness")
	}
}

func TestStatus_Flags(t *testing.T) {
	cmd := NewStatusCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	for _, flag := range []string{"--json", "--timeout"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help missing %q flag", flag)
		}
	}
}

// probeServer serves the health endpoints the status command queries.
func probeServer(t *testing.T, ready bool) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz/liveness", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/healthz/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestStatus_AllProbesHealthy(t *testing.T) {
	addr := probeServer(t, true)
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--metrics-addr", addr})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	for _, phrase := range []string{"liveness", "readiness", "ok"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("Output missing %q:\n%s", phrase, output)
		}
	}
}

func TestStatus_NotReady(t *testing.T) {
	addr := probeServer(t, false)
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--metrics-addr", addr})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(buf.String(), "not ready") {
		t.Errorf("Output should report readiness failure:\n%s", buf.String())
	}
}

func TestStatus_JSONOutput(t *testing.T) {
	addr := probeServer(t, true)
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"status", "--metrics-addr", addr, "--json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var statuses []ProbeStatus
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &statuses); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if len(statuses) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(statuses))
	}
	for _, s := range statuses {
		if s.Status != "ok" {
			t.Errorf("probe %s: status = %q, want %q", s.Probe, s.Status, "ok")
		}
	}
}

func TestStatus_Unreachable(t *testing.T) {
	configFile = ""

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	// Reserved port with nothing listening.
	cmd.SetArgs([]string{"status", "--metrics-addr", "127.0.0.1:1", "--timeout", "500ms"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(buf.String(), "unreachable") {
		t.Errorf("Output should report unreachable probes:\n%s", buf.String())
	}
}
