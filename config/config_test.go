package config

import "testing"

func TestMaskPassword(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"host=db password=secret dbname=x", "host=db password=***** dbname=x"},
		{"host=db password=secret", "host=db password=*****"},
		{"host=db dbname=x", "host=db dbname=x"},
	}
	for _, tc := range cases {
		if got := maskPassword(tc.in); got != tc.want {
			t.Errorf("maskPassword(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")
	if err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoadConfig_SqliteNeedsNoPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	if err := LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(AppConfig.AllowedOrigins) != 2 || AppConfig.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", AppConfig.AllowedOrigins)
	}
}

func TestLoadConfig_PostgresRequiresPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")
	if err := LoadConfig(); err == nil {
		t.Fatal("expected error when DB_PASSWORD is empty for postgres")
	}
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "mysql")
	if err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadConfig_EncryptionKeyFallsBackToJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ENCRYPTION_KEY", "")
	if err := LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if AppConfig.EncryptionKey != "test-secret" {
		t.Errorf("expected fallback key, got %q", AppConfig.EncryptionKey)
	}
}
