package inbound

import (
	"encoding/json"
	"testing"
)

func TestRegisterRequestWireShape(t *testing.T) {
	body := []byte(`{"name":"Ana","lastname":"Ruiz","email":"ana@example.com","password":"Secret1"}`)

	var req RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Name != "Ana" || req.Lastname != "Ruiz" {
		t.Fatalf("name fields = %q %q", req.Name, req.Lastname)
	}
	if req.Email != "ana@example.com" || req.Password != "Secret1" {
		t.Fatalf("email/password = %q %q", req.Email, req.Password)
	}
}

func TestLoginRequestWireShape(t *testing.T) {
	// machine is optional on the login body
	body := []byte(`{"email":"ana@example.com","password":"Secret1"}`)

	var req LoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Email != "ana@example.com" || req.Password != "Secret1" || req.Machine != "" {
		t.Fatalf("decoded = %+v", req)
	}
}
