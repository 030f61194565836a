package table

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeclareAndLookup(t *testing.T) {
	st := NewSymbolTable[int]()

	if err := st.Declare(Key{"a", "f"}, 1); err != nil {
		t.Fatal(err)
	}
	if err := st.Declare(Key{"b", "f"}, 2); err != nil {
		t.Fatalf("same name in another module should be allowed: %v", err)
	}
	if err := st.Declare(Key{"a", "f"}, 3); err == nil {
		t.Error("expected redeclaration error")
	}

	if v, ok := st.Lookup(Key{"b", "f"}); !ok || v != 2 {
		t.Errorf("Lookup(b:f) = %d, %v", v, ok)
	}
	if _, ok := st.Lookup(Key{"c", "f"}); ok {
		t.Error("unknown module should not resolve")
	}
}

func TestInternIsDense(t *testing.T) {
	st := NewSymbolTable[string]()
	keys := []Key{{"m", "z"}, {"m", "a"}, {"n", "q"}}
	for _, k := range keys {
		if err := st.Declare(k, k.String()); err != nil {
			t.Fatal(err)
		}
	}

	if st.ID(keys[0]) != InvalidSymbol {
		t.Error("ids must not exist before interning")
	}
	st.Intern()

	for i, k := range keys {
		id := st.ID(k)
		if id != SymbolID(i) {
			t.Errorf("ID(%s) = %d, want %d", k, id, i)
		}
		if st.Get(id) != k.String() {
			t.Errorf("Get(%d) = %s", id, st.Get(id))
		}
	}
	if diff := cmp.Diff(keys, st.Keys()); diff != "" {
		t.Errorf("declaration order lost (-want +got):\n%s", diff)
	}
	if err := st.Declare(Key{"m", "late"}, ""); err == nil {
		t.Error("declaring after interning should fail")
	}
}

func TestTablesInternSetsIDs(t *testing.T) {
	tables := New()
	f := &Function{Key: Key{"m", "f"}}
	g := &Function{Key: Key{"m", "g"}}
	tables.Functions.Declare(f.Key, f)
	tables.Functions.Declare(g.Key, g)

	tables.Intern()

	if f.ID != 0 || g.ID != 1 {
		t.Errorf("unexpected ids f=%d g=%d", f.ID, g.ID)
	}
}
