package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("gate-1", "kiosk", "rfid-gate-attendance", "secret", 15*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		key     string
		issuer  string
		wantErr bool
	}{
		{name: "valid access token", token: pair.AccessToken, key: "secret", issuer: "rfid-gate-attendance"},
		{name: "valid refresh token", token: pair.RefreshToken, key: "secret", issuer: "rfid-gate-attendance"},
		{name: "wrong key", token: pair.AccessToken, key: "other", issuer: "rfid-gate-attendance", wantErr: true},
		{name: "wrong issuer", token: pair.AccessToken, key: "secret", issuer: "someone-else", wantErr: true},
		{name: "garbage token", token: "not.a.jwt", key: "secret", issuer: "rfid-gate-attendance", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := Parse(tt.token, tt.key, tt.issuer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if claims.Subject != "gate-1" || claims.Role != "kiosk" {
					t.Errorf("claims = %+v, want subject gate-1 role kiosk", claims)
				}
			}
		})
	}
}

func TestParseExpired(t *testing.T) {
	pair, err := Issue("gate-1", "kiosk", "iss", "secret", -time.Minute, -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := Parse(pair.AccessToken, "secret", "iss"); err == nil {
		t.Error("Parse() of expired token = nil, want error")
	}
}
