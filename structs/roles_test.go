package structs

import (
	"reflect"
	"testing"
)

func TestRoleMaskEncodeDecode(t *testing.T) {
	m := NewRoleMask(RoleBasic, RoleBeneficiary)

	if !m.Has(RoleBasic) || !m.Has(RoleBeneficiary) {
		t.Errorf("expected basic and beneficiary bits set, got %b", m)
	}
	if m.Has(RoleDonor) {
		t.Errorf("donor bit should not be set, got %b", m)
	}

	want := []string{"Basic", "Beneficiary"}
	if got := m.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected decode: got %v, want %v", got, want)
	}
}

func TestRoleMaskDecodeOrdinalOrder(t *testing.T) {
	// Grant order must not affect decode order.
	m := NewRoleMask(RoleDonor, RoleBasic)

	want := []string{"Basic", "Donor"}
	if got := m.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected decode order: got %v, want %v", got, want)
	}
}

func TestRoleMaskGrantIdempotent(t *testing.T) {
	m := NewRoleMask(RoleBasic)

	once := m.Grant(RoleDonor)
	twice := once.Grant(RoleDonor)
	if once != twice {
		t.Errorf("grant not idempotent: %b != %b", once, twice)
	}
}

func TestRoleMaskRevokeIdempotent(t *testing.T) {
	m := NewRoleMask(RoleBasic, RoleDonor)

	once := m.Revoke(RoleDonor)
	twice := once.Revoke(RoleDonor)
	if once != twice {
		t.Errorf("revoke not idempotent: %b != %b", once, twice)
	}
}

func TestRoleMaskRevokeUndoesGrant(t *testing.T) {
	m := NewRoleMask(RoleBasic)

	if got := m.Grant(RoleDonor).Revoke(RoleDonor); got != m {
		t.Errorf("revoke after grant should restore mask: got %b, want %b", got, m)
	}
}

func TestParseRole(t *testing.T) {
	for _, name := range []string{"Basic", "Donor", "Beneficiary"} {
		role, ok := ParseRole(name)
		if !ok {
			t.Errorf("ParseRole(%q) failed", name)
			continue
		}
		if role.String() != name {
			t.Errorf("round trip mismatch: %q -> %v -> %q", name, role, role.String())
		}
	}

	if _, ok := ParseRole("Admin"); ok {
		t.Error("unknown role name must not parse")
	}
	if _, ok := ParseRole("basic"); ok {
		t.Error("role names are case-sensitive on the wire")
	}
}

func TestRoleMaskIgnoresStrayBits(t *testing.T) {
	// Bits beyond the closed role set must never decode into roles.
	m := RoleMask(1<<RoleBasic | 1<<10 | 1<<31)

	want := []string{"Basic"}
	if got := m.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("stray bits leaked into decode: got %v, want %v", got, want)
	}
}
