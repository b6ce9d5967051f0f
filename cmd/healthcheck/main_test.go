package main

import (
	"testing"

	"github.com/hamed0406/healthcheck/internal/config"
)

func TestListenAddr(t *testing.T) {
	t.Setenv("API_ADDR", "")
	t.Setenv("ADDR", "")
	port := uint16(9090)

	cfg := config.Config{Addr: ":8080"}
	if got := listenAddr(cfg, &config.File{}); got != ":8080" {
		t.Fatalf("want default addr, got %q", got)
	}
	if got := listenAddr(cfg, &config.File{WebPort: &port}); got != ":9090" {
		t.Fatalf("want web_port, got %q", got)
	}

	t.Setenv("API_ADDR", "127.0.0.1:7000")
	cfg.Addr = "127.0.0.1:7000"
	if got := listenAddr(cfg, &config.File{WebPort: &port}); got != "127.0.0.1:7000" {
		t.Fatalf("env must win, got %q", got)
	}
}
