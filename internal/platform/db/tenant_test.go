package db

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestExtractTenantID_FromHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", "clinic_abc")
	c := e.NewContext(req, httptest.NewRecorder())

	if tid := extractTenantID(c, "default"); tid != "clinic_abc" {
		t.Errorf("expected clinic_abc, got %s", tid)
	}
}

func TestExtractTenantID_FromQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?tenant_id=clinic_xyz", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if tid := extractTenantID(c, "default"); tid != "clinic_xyz" {
		t.Errorf("expected clinic_xyz, got %s", tid)
	}
}

func TestExtractTenantID_Priority(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?tenant_id=query", nil)
	req.Header.Set("X-Tenant-ID", "header")
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("jwt_tenant_id", "jwt")

	if tid := extractTenantID(c, "default"); tid != "jwt" {
		t.Errorf("expected jwt (highest priority), got %s", tid)
	}

}

func TestExtractTenantID_TokenWithoutTenantIgnoresOverrides(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?tenant_id=clinic_query", nil)
	req.Header.Set("X-Tenant-ID", "clinic_header")
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("jwt_tenant_id", "")

	if tid := extractTenantID(c, "default"); tid != "default" {
		t.Errorf("expected default for a token without tenant claim, got %s", tid)
	}
}

func TestExtractTenantID_Default(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if tid := extractTenantID(c, "default"); tid != "default" {
		t.Errorf("expected default, got %s", tid)
	}
}

func TestTenantIDPattern(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"abc", true},
		{"clinic_1", true},
		{"A1B2C3", true},
		{"a-b", false},
		{"a.b", false},
		{"a b", false},
		{"'; DROP TABLE", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tenantIDPattern.MatchString(tt.input); got != tt.valid {
			t.Errorf("tenantIDPattern.MatchString(%q) = %v, want %v", tt.input, got, tt.valid)
		}
	}
}

func TestContextAccessors(t *testing.T) {
	if ConnFromContext(context.Background()) != nil {
		t.Error("expected nil conn from empty context")
	}
	if TxFromContext(context.Background()) != nil {
		t.Error("expected nil tx from empty context")
	}
	if TenantFromContext(context.Background()) != "" {
		t.Error("expected empty tenant from empty context")
	}

	ctx := context.WithValue(context.Background(), DBConnKey, "not-a-conn")
	if ConnFromContext(ctx) != nil {
		t.Error("expected nil when context value is wrong type")
	}

	ctx = WithTenant(context.Background(), "clinic_1")
	if got := TenantFromContext(ctx); got != "clinic_1" {
		t.Errorf("expected clinic_1, got %q", got)
	}
}

func TestConn_Preference(t *testing.T) {
	fallback, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer fallback.Close()
	bound, err := pgxmock.NewConn()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}

	if Conn(context.Background(), fallback) != fallback {
		t.Error("expected fallback without a bound connection")
	}
	ctx := WithConn(context.Background(), bound)
	if Conn(ctx, fallback) != bound {
		t.Error("expected bound connection to win over fallback")
	}
}

func TestWithTx(t *testing.T) {
	if _, _, err := WithTx(context.Background()); !errors.Is(err, ErrNoConnection) {
		t.Fatalf("expected ErrNoConnection, got %v", err)
	}

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()
	mock.ExpectBegin()

	ctx, tx, err := WithTx(WithConn(context.Background(), mock))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if TxFromContext(ctx) != tx {
		t.Error("expected transaction bound to returned context")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateTenantSchema_InvalidIDs(t *testing.T) {
	for _, id := range []string{"invalid-id!", "tenant.with.dot", "ten ant", "drop;table"} {
		if err := CreateTenantSchema(context.Background(), nil, id, ""); err == nil {
			t.Errorf("expected error for invalid tenant ID %q", id)
		}
	}
}

func TestCreateTenantSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS tenant_clinic_1").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := CreateTenantSchema(context.Background(), mock, "clinic_1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
