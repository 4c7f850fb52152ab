package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_URL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("GUILD_BINDINGS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AppURL == "" || cfg.AppURL[len(cfg.AppURL)-1] != '/' {
		t.Errorf("expected default AppURL ending in /, got %q", cfg.AppURL)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBDsn == "" {
		t.Errorf("expected default DB_DSN, got empty")
	}
}

func TestLoadNormalizesAppURL(t *testing.T) {
	t.Setenv("APP_URL", "https://time.example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.AppURL != "https://time.example.com/" {
		t.Errorf("AppURL = %q, want trailing slash appended", cfg.AppURL)
	}
}

func TestLoadPortFallback(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
}

func TestParseGuildBindings(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    []GuildBinding
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single no channel", "123", []GuildBinding{{GuildID: "123"}}, false},
		{"single with channel", "123=456", []GuildBinding{{GuildID: "123", RegChannelID: "456"}}, false},
		{
			"mixed with spaces",
			" 123=456 , 789 ",
			[]GuildBinding{{GuildID: "123", RegChannelID: "456"}, {GuildID: "789"}},
			false,
		},
		{"missing guild id", "=456", nil, true},
		{"duplicate guild", "123,123=456", nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseGuildBindings(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseGuildBindings(%q) expected error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGuildBindings(%q) error: %v", tc.raw, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d bindings, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("binding %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestValidateBotReady(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("GUILD_BINDINGS", "123=456")
	cfg, _ := Load()
	if err := cfg.ValidateBotReady(); err != nil {
		t.Errorf("expected valid bot config, got %v", err)
	}

	t.Setenv("DISCORD_TOKEN", "")
	cfg, _ = Load()
	if err := cfg.ValidateBotReady(); err == nil {
		t.Errorf("expected error when DISCORD_TOKEN missing")
	}

	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("GUILD_BINDINGS", "")
	cfg, _ = Load()
	if err := cfg.ValidateBotReady(); err == nil {
		t.Errorf("expected error when no guilds bound")
	}
}
