package config

import (
	"testing"
)

const validClients = `{
  "acme": {
    "facebook":  {"access_token": "fb-tok", "account_id": "fb-acc"},
    "instagram": {"access_token": "ig-tok", "account_id": "ig-acc"}
  },
  "globex": {
    "instagram": {"access_token": "", "account_id": "ig-acc-2"}
  }
}`

func TestParseClients(t *testing.T) {
	clients, err := parseClients(validClients)
	if err != nil {
		t.Fatalf("parseClients returned error: %v", err)
	}

	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}

	fb := clients["acme"]["facebook"]
	if fb.AccessToken != "fb-tok" || fb.AccountID != "fb-acc" {
		t.Errorf("unexpected facebook credentials: %+v", fb)
	}

	// Empty credentials parse fine; the pipeline skips them at run time.
	if clients["globex"]["instagram"].AccessToken != "" {
		t.Error("empty access token should be preserved")
	}
}

func TestParseClientsMissing(t *testing.T) {
	if _, err := parseClients(""); err == nil {
		t.Fatal("missing CLIENTS must be fatal")
	}
}

func TestParseClientsMalformed(t *testing.T) {
	if _, err := parseClients(`{"acme": `); err == nil {
		t.Fatal("malformed CLIENTS must be fatal")
	}
}

func TestParseClientsEmptyObject(t *testing.T) {
	if _, err := parseClients(`{}`); err == nil {
		t.Fatal("an empty client map must be fatal")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CLIENTS", validClients)
	t.Setenv("MONGODB_URI", "mongodb://test:27017")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.MongoDBURI != "mongodb://test:27017" {
		t.Errorf("MongoDBURI = %q", cfg.MongoDBURI)
	}
	if cfg.IngestSchedule != "@every 24h" {
		t.Errorf("default ingest schedule = %q, want @every 24h", cfg.IngestSchedule)
	}
	if cfg.EngagementStrategy != "counts" {
		t.Errorf("default engagement strategy = %q, want counts", cfg.EngagementStrategy)
	}
	if cfg.InsightMode != "deferred" {
		t.Errorf("default insight mode = %q, want deferred", cfg.InsightMode)
	}
	if cfg.MaxPages != 100 {
		t.Errorf("default max pages = %d, want 100", cfg.MaxPages)
	}
	if len(cfg.Clients) != 2 {
		t.Errorf("expected 2 clients, got %d", len(cfg.Clients))
	}
}

func TestLoadConfigRequiresClients(t *testing.T) {
	t.Setenv("CLIENTS", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig without CLIENTS must fail")
	}
}
