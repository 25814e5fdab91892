package infrastructure_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/document-center/internal/config"
	"github.com/JaimeStill/document-center/internal/infrastructure"
)

func TestNew_ConstructsWithoutConnecting(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Name = "document_center"
	cfg.Database.User = "document_center"
	cfg.Database.Port = 1
	cfg.Cache.BasePath = filepath.Join(t.TempDir(), "websites")
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil || infra.Logger == nil || infra.Database == nil || infra.Cache == nil || infra.Secrets == nil {
		t.Fatal("New() left a system nil")
	}

	if infra.Database.Ready() {
		t.Error("database ready before Start")
	}

	if _, err := os.Stat(cfg.Cache.BasePath); !os.IsNotExist(err) {
		t.Error("cache directory created before startup")
	}

	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
