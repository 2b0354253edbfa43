package clickhouse

import (
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func TestBuildOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Host = "ch.local"
	cfg.Database = "market"
	cfg.User = "reader"
	cfg.Password = "p@ss/word"
	cfg.Compression = "lz4"
	cfg.MaxExecTime = 30 * time.Second

	opt := buildOptions(cfg)
	if len(opt.Addr) != 1 || opt.Addr[0] != "ch.local:9000" {
		t.Fatalf("unexpected addr: %v", opt.Addr)
	}
	if opt.Auth.Database != "market" || opt.Auth.Username != "reader" || opt.Auth.Password != "p@ss/word" {
		t.Fatalf("unexpected auth: %+v", opt.Auth)
	}
	if opt.Protocol != clickhouse.Native {
		t.Fatalf("expected native protocol")
	}
	if opt.Compression == nil || opt.Compression.Method != clickhouse.CompressionLZ4 {
		t.Fatalf("expected lz4 compression, got %+v", opt.Compression)
	}
	if opt.Settings["max_execution_time"] != 30 {
		t.Fatalf("unexpected settings: %v", opt.Settings)
	}
}

func TestBuildOptionsHTTPWithoutCompression(t *testing.T) {
	cfg := defaultConfig()
	cfg.Host = "ch.local"
	cfg.Port = 8123
	cfg.UseHTTP = true
	cfg.Compression = "none"

	opt := buildOptions(cfg)
	if opt.Protocol != clickhouse.HTTP {
		t.Fatalf("expected http protocol")
	}
	if opt.Compression != nil {
		t.Fatalf("expected no compression, got %+v", opt.Compression)
	}
	if opt.Settings != nil {
		t.Fatalf("expected no settings, got %v", opt.Settings)
	}
}

func TestWithMaxConnectionsKeepsDefaults(t *testing.T) {
	cfg := defaultConfig()
	WithMaxConnections(0, -1)(&cfg)
	if cfg.MaxOpenConns != 10 || cfg.MaxIdleConns != 5 {
		t.Fatalf("defaults overwritten: %d/%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without host")
	}
}
