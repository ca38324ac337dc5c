package pathstore

import (
	"path/filepath"
	"reflect"
	"testing"
)

// newTestStore creates a store over a fresh temp file with the three entry
// shapes used throughout the tests.
func newTestStore(t *testing.T, mutate ...func(*Options)) *Store {
	t.Helper()
	opts := Options{
		Filename: filepath.Join(t.TempDir(), "data.json"),
		Entries: map[string]Shape{
			"/login":       ShapeSingle,
			"/restaurants": ShapeArray,
			"/teams":       ShapeDictionary,
		},
	}
	for _, f := range mutate {
		f(&opts)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Options{Entries: map[string]Shape{"/a": ShapeSingle}}); err == nil {
		t.Error("New without filename succeeded")
	}
	tests := []struct {
		name     string
		opts     Options
		wantCode ErrorCode
	}{
		{name: "invalid shape", opts: Options{Filename: "x.json", Entries: map[string]Shape{"/a": "blob"}}, wantCode: CodeUnknownPath},
		{name: "bracket in entry path", opts: Options{Filename: "x.json", Entries: map[string]Shape{"/a[0]": ShapeSingle}}, wantCode: CodeInvalidKey},
		{name: "empty entry path", opts: Options{Filename: "x.json", Entries: map[string]Shape{"": ShapeSingle}}, wantCode: CodeUnknownPath},
		{name: "bracket in separator", opts: Options{Filename: "x.json", Separator: "[", Entries: map[string]Shape{"a": ShapeSingle}}, wantCode: CodeInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); CodeOf(err) != tt.wantCode {
				t.Errorf("New() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestSingleSetMergeGet(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("/login", map[string]any{"username": "a", "password": "b"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Merge("/login", map[string]any{"username": "c"}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	got, err := s.Get("/login")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := map[string]any{"username": "c", "password": "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get(/login) = %v, want %v", got, want)
	}
}

func TestArrayPushGet(t *testing.T) {
	s := newTestStore(t)
	r1 := map[string]any{"name": "r1"}
	r2 := map[string]any{"name": "r2"}
	r3 := map[string]any{"name": "r3"}
	if err := s.Set("/restaurants", []any{r1, r2}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Push("/restaurants", r3); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	for _, loc := range []Locator{Index(-1), Index(2)} {
		got, err := s.Get("/restaurants", loc)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !reflect.DeepEqual(got, r3) {
			t.Errorf("Get(/restaurants, %v) = %v, want %v", loc, got, r3)
		}
	}
	whole, err := s.Get("/restaurants")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(whole, []any{r1, r2, r3}) {
		t.Errorf("Get(/restaurants) = %v", whole)
	}
}

func TestArrayExplicitIndex(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("/restaurants", []any{"a", "b"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Index 0 is a supplied locator, not "omitted": it must write in place,
	// never append.
	if err := s.Push("/restaurants", "A", Index(0)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	got, err := s.Get("/restaurants")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"A", "b"}) {
		t.Errorf("Get(/restaurants) = %v, want [A b]", got)
	}

	// len(arr) is the one valid insertion point past the existing elements.
	if err := s.Push("/restaurants", "c", Index(2)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := s.Push("/restaurants", "x", Index(7)); CodeOf(err) != CodeIndexOutOfRange {
		t.Errorf("Push past end error = %v, want code %s", err, CodeIndexOutOfRange)
	}

	if err := s.Merge("/restaurants", "m"); CodeOf(err) != CodeMissingIndex {
		t.Errorf("Merge without index error = %v, want code %s", err, CodeMissingIndex)
	}
	if err := s.Merge("/restaurants", "m", Index(0)); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if v, _ := s.Get("/restaurants", Index(0)); v != "m" {
		t.Errorf("Get(0) = %v, want m", v)
	}
}

func TestDictionaryOperations(t *testing.T) {
	s := newTestStore(t)
	if err := s.Push("/teams", "v1", Key("alice")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if v, err := s.Get("/teams", Key("alice")); err != nil || v != "v1" {
		t.Fatalf("Get(alice) = %v, %v, want v1", v, err)
	}
	if err := s.Merge("/teams", "v2", Key("alice")); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if v, _ := s.Get("/teams", Key("alice")); v != "v2" {
		t.Errorf("Get(alice) = %v, want v2", v)
	}

	if err := s.Push("/teams", "v3"); CodeOf(err) != CodeMissingKey {
		t.Errorf("Push without key error = %v, want code %s", err, CodeMissingKey)
	}
	if err := s.Push("/teams", "v3", Key("a/b")); CodeOf(err) != CodeInvalidKey {
		t.Errorf("Push with bad key error = %v, want code %s", err, CodeInvalidKey)
	}

	// Whole-map merge combines keys.
	if err := s.Push("/teams", "w1", Key("bob")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := s.Merge("/teams", map[string]any{"carol": "x1"}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	got, err := s.Get("/teams")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := map[string]any{"alice": "v2", "bob": "w1", "carol": "x1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get(/teams) = %v, want %v", got, want)
	}
}

func TestMergeTargetMissing(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		path string
		loc  []Locator
	}{
		{path: "/login"},
		{path: "/restaurants", loc: []Locator{Index(0)}},
		{path: "/teams", loc: []Locator{Key("alice")}},
	}
	for _, tt := range tests {
		if err := s.Merge(tt.path, map[string]any{"x": 1}, tt.loc...); CodeOf(err) != CodeMergeTargetMissing {
			t.Errorf("Merge(%s) error = %v, want code %s", tt.path, err, CodeMergeTargetMissing)
		}
	}
}

func TestDeleteAndExists(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("/login", map[string]any{"u": "a"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if found, _ := s.Exists("/login"); !found {
		t.Fatal("Exists(/login) = false after Set")
	}
	if err := s.Delete("/login"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if found, _ := s.Exists("/login"); found {
		t.Error("Exists(/login) = true after Delete")
	}
	// Deleting missing data must not fail and must not mark the store dirty.
	if err := s.Save(false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete("/login"); err != nil {
		t.Errorf("Delete on missing data failed: %v", err)
	}
	if s.Dirty() {
		t.Error("no-op delete marked the store dirty")
	}
}

func TestGetMissingPolicy(t *testing.T) {
	// The default policy returns nil for missing data.
	s := newTestStore(t)
	v, err := s.Get("/login")
	if err != nil || v != nil {
		t.Errorf("Get(/login) = %v, %v, want nil, nil", v, err)
	}

	// ErrorOnMissing makes every read of missing data fail, consistently.
	strict := newTestStore(t, func(o *Options) { o.ErrorOnMissing = true })
	if _, err := strict.Get("/login"); CodeOf(err) != CodeNotFound {
		t.Errorf("strict Get(/login) error = %v, want code %s", err, CodeNotFound)
	}
	if _, err := strict.Get("/teams", Key("alice")); CodeOf(err) != CodeNotFound {
		t.Errorf("strict Get(/teams, alice) error = %v, want code %s", err, CodeNotFound)
	}
}

func TestUnknownPath(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("/unheard-of"); CodeOf(err) != CodeUnknownPath {
		t.Errorf("Get error = %v, want code %s", err, CodeUnknownPath)
	}
	if err := s.Set("/unheard-of", 1); CodeOf(err) != CodeUnknownPath {
		t.Errorf("Set error = %v, want code %s", err, CodeUnknownPath)
	}
}

func TestLocatorMisuse(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("/restaurants", Key("alice")); CodeOf(err) != CodeInvalidLocator {
		t.Errorf("Get with key on array error = %v, want code %s", err, CodeInvalidLocator)
	}
	if _, err := s.Get("/teams", Index(1)); CodeOf(err) != CodeInvalidLocator {
		t.Errorf("Get with index on dictionary error = %v, want code %s", err, CodeInvalidLocator)
	}
	if _, err := s.Get("/restaurants", Index(0), Index(1)); CodeOf(err) != CodeInvalidLocator {
		t.Errorf("Get with two locators error = %v, want code %s", err, CodeInvalidLocator)
	}
}

func TestPushIfNotExists(t *testing.T) {
	s := newTestStore(t)
	initial := map[string]any{"username": "a"}
	if err := s.PushIfNotExists("/login", initial); err != nil {
		t.Fatalf("PushIfNotExists failed: %v", err)
	}
	// Second call must leave the existing data alone.
	if err := s.PushIfNotExists("/login", map[string]any{"username": "z"}); err != nil {
		t.Fatalf("PushIfNotExists failed: %v", err)
	}
	got, err := s.Get("/login")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got, initial) {
		t.Errorf("Get(/login) = %v, want %v", got, initial)
	}
}

func TestPathNormalization(t *testing.T) {
	s := newTestStore(t)
	if err := s.Set("/login/", map[string]any{"u": "a"}); err != nil {
		t.Fatalf("Set with trailing separator failed: %v", err)
	}
	if found, err := s.Exists("/login"); err != nil || !found {
		t.Errorf("Exists(/login) = %v, %v, want true", found, err)
	}
}
