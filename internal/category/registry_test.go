package category

import "testing"

func TestDefaultRegistryOrderAndLookup(t *testing.T) {
	r := Default()
	want := []string{"purchases", "food", "salary", "car", "leisure", "studies"}
	all := r.All()
	if len(all) != len(want) || r.Len() != len(want) {
		t.Fatalf("unexpected registry size %d", len(all))
	}
	for i, k := range want {
		if all[i].Key != k {
			t.Fatalf("entry %d = %q, want %q", i, all[i].Key, k)
		}
	}

	food, ok := r.Lookup("food")
	if !ok || food.Name != "Alimentação" || food.Icon != "coffee" || food.Color != "#FF872C" {
		t.Fatalf("unexpected food entry: %+v ok=%v", food, ok)
	}
	if _, ok := r.Lookup("Food"); ok {
		t.Fatalf("lookup must be exact")
	}
	if _, ok := r.Lookup("foo"); ok {
		t.Fatalf("lookup must not match prefixes")
	}
}

func TestResolveFallsBackToUnknown(t *testing.T) {
	r := Default()
	if got := r.Resolve("gifts"); got != Unknown {
		t.Fatalf("expected Unknown, got %+v", got)
	}
	if got := r.Resolve("car"); got.Key != "car" {
		t.Fatalf("expected car, got %+v", got)
	}
	if r.Contains(UnknownKey) {
		t.Fatalf("fallback entry must not be part of the registry")
	}
}

func TestNewIgnoresDuplicatesAndEmptyKeys(t *testing.T) {
	r := New(
		Category{Key: "a", Name: "first"},
		Category{Key: ""},
		Category{Key: "a", Name: "second"},
		Category{Key: "b"},
	)
	if r.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", r.Len())
	}
	if c, _ := r.Lookup("a"); c.Name != "first" {
		t.Fatalf("expected first declaration to win, got %q", c.Name)
	}

	all := r.All()
	all[0].Name = "mutated"
	if c, _ := r.Lookup("a"); c.Name != "first" {
		t.Fatalf("All must return a copy")
	}
}
