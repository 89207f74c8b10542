package database

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"studybuddy/internal/core/config"
)

func TestMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass string
		want, masked         string
	}{
		{"parse time forced", "u:p@tcp(db:3306)/sb", "", "", "u:p@tcp(db:3306)/sb?parseTime=true", "u:****@tcp(db:3306)/sb?parseTime=true"},
		{"credential override", "u:p@tcp(db:3306)/sb?parseTime=true", "root", "secret", "root:secret@tcp(db:3306)/sb?parseTime=true", "root:****@tcp(db:3306)/sb?parseTime=true"},
		{"no password", "u@tcp(db:3306)/sb", "", "", "u@tcp(db:3306)/sb?parseTime=true", "u@tcp(db:3306)/sb?parseTime=true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, masked, err := mysqlDSN(tc.in, tc.user, tc.pass)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want || masked != tc.masked {
				t.Errorf("got %q / %q, want %q / %q", got, masked, tc.want, tc.masked)
			}
			if tc.pass != "" && strings.Contains(masked, tc.pass) {
				t.Errorf("password leaked: %q", masked)
			}
		})
	}
}

func TestMySQLDSNInvalid(t *testing.T) {
	if _, _, err := mysqlDSN("u:p@tcp(db:3306)/sb?parseTime=maybe", "", ""); err == nil {
		t.Fatal("bad parseTime should be rejected")
	}
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	if _, err := NewGorm("sqlite", config.DB{}, zap.NewNop()); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("want ErrUnsupportedDriver, got %v", err)
	}
}
