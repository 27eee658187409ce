package integrations

import "testing"

func TestBcryptPasswordUtil_CreateAndVerify(t *testing.T) {
	p := &BcryptPasswordUtil{Cost: 4}

	salt, hash, err := p.CreateSaltAndHash("hunter2")
	if err != nil {
		t.Fatalf("CreateSaltAndHash: %v", err)
	}
	if salt == "" || hash == "" {
		t.Fatal("expected non-empty salt and hash")
	}

	if !p.Verify("hunter2", salt, hash) {
		t.Error("expected the original password to verify")
	}
	if p.Verify("wrong-password", salt, hash) {
		t.Error("expected a wrong password to fail verification")
	}
}

func TestBcryptPasswordUtil_DefaultsCostWhenZero(t *testing.T) {
	p := &BcryptPasswordUtil{}

	_, hash, err := p.CreateSaltAndHash("hunter2")
	if err != nil {
		t.Fatalf("CreateSaltAndHash: %v", err)
	}
	if !p.Verify("hunter2", "", hash) {
		t.Error("expected verification to succeed with the default cost")
	}
}

func TestNewBcryptPasswordUtil_UsesDefaultCost(t *testing.T) {
	p := NewBcryptPasswordUtil()
	if p.Cost != DefaultHashCost {
		t.Fatalf("Cost = %d, want %d", p.Cost, DefaultHashCost)
	}
}
