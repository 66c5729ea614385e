package binding_test

import (
	"errors"
	"testing"

	"github.com/reoring/jsonmodel/binding"
	"github.com/reoring/jsonmodel/registry"
)

func setup() *registry.Registry {
	r := registry.New()
	r.CreateManager("app", registry.Config{}).Create("user", map[string]any{
		"name": "John",
		"age":  30.0,
		"tags": []any{"a", "b"},
	})
	r.CreateManager("shared", registry.Config{}).Create("settings", map[string]any{"theme": "dark"})
	return r
}

func TestContext_Manager(t *testing.T) {
	r := setup()
	ctx := binding.NewContext(r, "shared")
	if m, ok := ctx.Manager(""); !ok || m.Namespace() != "shared" {
		t.Fatalf("context namespace first")
	}
	if m, ok := ctx.Manager("app"); !ok || m.Namespace() != "app" {
		t.Fatalf("explicit namespace wins")
	}

	ctx = binding.Context{Registry: r, FallbackSearch: true}
	if m, ok := ctx.Manager(""); !ok || m.Namespace() != "app" {
		t.Fatalf("fallback picks the first namespace")
	}
	ctx.FallbackSearch = false
	if _, ok := ctx.Manager(""); ok {
		t.Fatalf("no namespace and no fallback")
	}
}

func TestContext_FindOrder(t *testing.T) {
	r := setup()
	mgr, _ := r.Get("shared")
	mgr.Create("user", map[string]any{"name": "Shared"})

	ctx := binding.NewContext(r, "shared")
	m, ns, ok := ctx.Find("user", "app")
	if !ok || ns != "app" {
		t.Fatalf("preferred namespace first, got %q", ns)
	}
	if v, _ := m.Get("/name"); v != "John" {
		t.Fatalf("got %v", v)
	}
	if _, ns, _ = ctx.Find("user", ""); ns != "shared" {
		t.Fatalf("context namespace second, got %q", ns)
	}
	if _, ns, _ = ctx.Find("settings", "app"); ns != "shared" {
		t.Fatalf("fallback search finds settings, got %q", ns)
	}

	ctx = binding.Context{Registry: r, Namespace: "app"}
	if _, _, ok := ctx.Find("settings", ""); ok {
		t.Fatalf("no fallback search")
	}
}

func TestBind_GetSet(t *testing.T) {
	r := setup()
	ctx := binding.NewContext(r, "app")

	name := binding.Bind[string](ctx, "user", "/name")
	if got := name.Get(); got != "John" {
		t.Fatalf("got %q", got)
	}
	if err := name.Set("Jane"); err != nil {
		t.Fatalf("set: %v", err)
	}
	mgr, _ := r.Get("app")
	m, _ := mgr.Model("user")
	if v, _ := m.Get("/name"); v != "Jane" {
		t.Fatalf("write should reach the model, got %v", v)
	}

	age := binding.Bind[int](ctx, "user", "/age")
	if got := age.Get(); got != 30 {
		t.Fatalf("float64 converts to int, got %d", got)
	}
	tags := binding.Bind[[]string](ctx, "user", "/tags")
	if got := tags.Get(); len(got) != 2 || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestBind_Default(t *testing.T) {
	r := setup()
	ctx := binding.NewContext(r, "app")
	v := binding.Bind[string](ctx, "user", "/nickname", binding.WithDefault("anon"))
	if got := v.Get(); got != "anon" {
		t.Fatalf("got %q", got)
	}
	if _, ok := v.Lookup(); ok {
		t.Fatalf("absent path should not be found")
	}
	missing := binding.Bind[string](ctx, "ghost", "/x", binding.WithDefault("d"))
	if got := missing.Get(); got != "d" {
		t.Fatalf("missing model falls back to default, got %q", got)
	}
}

func TestBind_NamespaceWithoutFallback(t *testing.T) {
	r := setup()
	ctx := binding.NewContext(r, "app")
	theme := binding.Bind[string](ctx, "settings", "/theme", binding.WithNamespace("shared"), binding.WithoutFallback())
	if got := theme.Get(); got != "dark" {
		t.Fatalf("got %q", got)
	}

	none := binding.Bind[string](ctx, "settings", "/theme", binding.WithoutFallback())
	if _, ok := none.Lookup(); ok {
		t.Fatalf("settings is not in app and fallback is off")
	}
	if err := none.Set("light"); !errors.Is(err, registry.ErrModelNotFound) {
		t.Fatalf("want ErrModelNotFound, got %v", err)
	}
}

func TestBind_PinnedNamespaceDoesNotFallBack(t *testing.T) {
	r := registry.New()
	r.CreateManager("a", registry.Config{})
	b := r.CreateManager("b", registry.Config{}).Create("user", map[string]any{"name": "B"})
	ctx := binding.NewContext(r, "b")

	name := binding.Bind[string](ctx, "user", "/name", binding.WithNamespace("a"), binding.WithDefault("none"))
	if got := name.Get(); got != "none" {
		t.Fatalf("pinned namespace a has no user, got %q", got)
	}
	if err := name.Set("written-via-a"); !errors.Is(err, registry.ErrModelNotFound) {
		t.Fatalf("want ErrModelNotFound, got %v", err)
	}
	if err := binding.Doc(ctx, "user", binding.WithNamespace("a")).Field("name").Set("written-via-a"); !errors.Is(err, registry.ErrModelNotFound) {
		t.Fatalf("node: want ErrModelNotFound, got %v", err)
	}
	if v, _ := b.Get("/name"); v != "B" {
		t.Fatalf("namespace b must be untouched, got %v", v)
	}

	ghost := binding.Bind[string](ctx, "user", "/name", binding.WithNamespace("missing"))
	if _, ok := ghost.Lookup(); ok {
		t.Fatalf("unknown pinned namespace resolves nothing")
	}
}

type profile struct {
	City string `json:"city"`
}

func TestBind_StructValues(t *testing.T) {
	r := setup()
	ctx := binding.NewContext(r, "app")
	p := binding.Bind[profile](ctx, "user", "/profile")
	if err := p.Set(profile{City: "Lima"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	mgr, _ := r.Get("app")
	m, _ := mgr.Model("user")
	if v, _ := m.Get("/profile/city"); v != "Lima" {
		t.Fatalf("structs are stored as objects, got %#v", v)
	}
	if got := p.Get(); got.City != "Lima" {
		t.Fatalf("got %+v", got)
	}
}

func TestDoc_Node(t *testing.T) {
	r := setup()
	ctx := binding.NewContext(r, "app")
	root := binding.Doc(ctx, "user")

	if root.Path() != "/" || root.Len() != 3 {
		t.Fatalf("root: %s len=%d", root.Path(), root.Len())
	}
	if keys := root.Keys(); len(keys) != 3 || keys[0] != "age" {
		t.Fatalf("keys: %v", keys)
	}
	tag := root.Field("tags").Index(1)
	if tag.Path() != "/tags/1" {
		t.Fatalf("path: %s", tag.Path())
	}
	if v, ok := tag.Get(); !ok || v != "b" {
		t.Fatalf("got %v", v)
	}
	if root.Field("tags").Len() != 2 {
		t.Fatalf("array len")
	}
	odd := root.Field("a/b")
	if odd.Path() != "/a~1b" {
		t.Fatalf("keys are escaped, got %s", odd.Path())
	}
	if err := odd.Set(1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !odd.Has() {
		t.Fatalf("escaped key should resolve")
	}
	if v, _ := odd.Get(); v != 1.0 {
		t.Fatalf("ints are stored as float64, got %#v", v)
	}
	if err := binding.Doc(ctx, "ghost").Field("x").Set(1); !errors.Is(err, registry.ErrModelNotFound) {
		t.Fatalf("want ErrModelNotFound, got %v", err)
	}
}
