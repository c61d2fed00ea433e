package server

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.AuthMode != "grant" {
		t.Fatalf("expected default auth mode grant, got %q", cfg.AuthMode)
	}
	if cfg.DBPath != "zkgames.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9999", "-db", "/tmp/test.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9999 {
		t.Fatalf("expected port 9999, got %d", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("expected overridden db path, got %q", cfg.DBPath)
	}
}

func TestBuildAuthorizerRejectsUnknownMode(t *testing.T) {
	if _, err := buildAuthorizer("bogus"); err == nil {
		t.Fatal("expected error for unknown auth mode")
	}
}

func TestBuildNotifierModes(t *testing.T) {
	for _, mode := range []string{"log", "noop"} {
		if _, err := buildNotifier(mode); err != nil {
			t.Fatalf("mode %s: %v", mode, err)
		}
	}
	if _, err := buildNotifier("bogus"); err == nil {
		t.Fatal("expected error for unknown hub mode")
	}
}

func TestBuildSequenceRejectsBadEpoch(t *testing.T) {
	if _, err := buildSequence("not-a-time"); err == nil {
		t.Fatal("expected error for malformed epoch")
	}
	if _, err := buildSequence(""); err != nil {
		t.Fatalf("default epoch must parse: %v", err)
	}
}
