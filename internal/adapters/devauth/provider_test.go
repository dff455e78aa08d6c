package devauth

import (
	"context"
	"testing"

	domainauth "github.com/studyzone/studyzone-api/internal/domain/auth"
	"github.com/studyzone/studyzone-api/internal/ports"
)

func TestProvider_SignIn(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@studyzone.com", Role: domainauth.RoleAdmin})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	id, err := prov.SignIn(context.Background(), ports.Credentials{Email: "DEV@studyzone.com", Password: "anything"})
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
	if id.UserID != "dev-user" || id.Role != domainauth.RoleAdmin {
		t.Fatalf("unexpected identity: %+v", id)
	}

	if _, err := prov.SignIn(context.Background(), ports.Credentials{Email: "other@studyzone.com"}); err == nil {
		t.Fatal("expected error for unknown email")
	}
}

func TestProvider_SignUp(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@studyzone.com"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}

	id, err := prov.SignUp(context.Background(), ports.SignUpInput{Email: "New@studyzone.com", FullName: "New Student"})
	if err != nil {
		t.Fatalf("SignUp error: %v", err)
	}
	if id.Email != "new@studyzone.com" || id.Role != domainauth.RoleStudent {
		t.Fatalf("unexpected identity: %+v", id)
	}
}
