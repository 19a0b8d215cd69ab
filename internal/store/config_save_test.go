package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
)

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("MEMO_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg == nil || cfg.Backend != "" || cfg.Key != "" || cfg.TUI != nil {
		t.Fatalf("expected empty config; got %#v", cfg)
	}
}

func TestSaveConfig_RoundTripAndBackup(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("MEMO_CONFIG_DIR", cfgDir)

	first := &GlobalConfig{Backend: BackendFile, Key: "first"}
	if err := SaveConfig(first); err != nil {
		t.Fatalf("SaveConfig(first): %v", err)
	}
	second := &GlobalConfig{Backend: BackendSQLite, Key: "second", TUI: &TUIConfig{Theme: "light"}}
	if err := SaveConfig(second); err != nil {
		t.Fatalf("SaveConfig(second): %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Key != "second" || got.Backend != BackendSQLite || got.TUI == nil || got.TUI.Theme != "light" {
		t.Fatalf("unexpected config: %#v", got)
	}

	path, _ := ConfigPath()
	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	var bakCfg GlobalConfig
	if err := json.Unmarshal(bak, &bakCfg); err != nil {
		t.Fatalf("backup unparseable: %v", err)
	}
	if bakCfg.Key != "first" {
		t.Fatalf("expected backup to hold previous config; got %#v", bakCfg)
	}
}

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("MEMO_CONFIG_DIR", cfgDir)

	if err := SaveConfig(&GlobalConfig{Key: "seed"}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 64
	errCh := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			cfg, err := LoadConfig()
			if err != nil {
				// A reader can race a rename on some filesystems; only writes must not corrupt.
				cfg = &GlobalConfig{}
			}
			cfg.Key = fmt.Sprintf("key-%d", i)
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("concurrent SaveConfig: %v", err)
	}
	if t.Failed() {
		return
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config.json: %v", err)
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("config.json corrupted/unparseable: %v\nraw:\n%s", err, string(raw))
	}

	ents, err := os.ReadDir(cfgDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, "config.json.") && strings.HasSuffix(name, ".tmp") {
			t.Fatalf("leftover temp file: %s", name)
		}
	}
}
