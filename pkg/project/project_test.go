package project_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ueforge/ueforge/pkg/project"
)

func writeUproject(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write uproject: %v", err)
	}
	return path
}

func TestLoad_FromSource(t *testing.T) {
	path := writeUproject(t, "MyGame.uproject", `{
		"EngineAssociation": "{1A2B3C4D-0000-0000-0000-000000000000}",
		"Plugins": [{"Name": "OnlineSubsystem"}, {"Name": "Niagara"}]
	}`)

	proj, err := project.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if proj.Name != "MyGame" {
		t.Errorf("name = %s, want MyGame", proj.Name)
	}
	if !proj.FromSource() {
		t.Errorf("engine version = %s, want From Source", proj.EngineVersion)
	}
	if !reflect.DeepEqual(proj.Plugins, []string{"OnlineSubsystem", "Niagara"}) {
		t.Errorf("plugins = %v", proj.Plugins)
	}
}

func TestLoad_LauncherVersion(t *testing.T) {
	path := writeUproject(t, "Sample.uproject", `{"EngineAssociation": "5.4"}`)

	proj, err := project.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if proj.EngineVersion != "5.4" {
		t.Errorf("engine version = %s, want 5.4", proj.EngineVersion)
	}
	if proj.FromSource() {
		t.Error("launcher project reported as from source")
	}
}

func TestLoad_NoAssociation(t *testing.T) {
	path := writeUproject(t, "Bare.uproject", `{}`)

	proj, err := project.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if proj.EngineVersion != project.EngineVersionUnknown {
		t.Errorf("engine version = %s, want Unknown", proj.EngineVersion)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeUproject(t, "Broken.uproject", `not json`)
	if _, err := project.Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestStore_AddAndFind(t *testing.T) {
	store, err := project.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store creation failed: %v", err)
	}
	path := writeUproject(t, "MyGame.uproject", `{"EngineAssociation": "5.3"}`)

	added, err := store.Add(path)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// adding the same location again must not duplicate
	again, err := store.Add(path)
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	if !reflect.DeepEqual(added, again) {
		t.Errorf("re-add changed the entry: %+v vs %+v", added, again)
	}

	projects, err := store.Projects()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1", len(projects))
	}

	found, err := store.Find("MyGame")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found.Location != path {
		t.Errorf("found location = %s, want %s", found.Location, path)
	}

	if _, err := store.Find("Nope"); err == nil {
		t.Error("expected error for unknown project")
	}
}

func TestStore_EngineRoundTrip(t *testing.T) {
	store, err := project.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store creation failed: %v", err)
	}

	// missing file yields a zero engine
	eng, err := store.Engine()
	if err != nil {
		t.Fatalf("read of missing engine file failed: %v", err)
	}
	if eng.Location != "" {
		t.Errorf("unexpected engine location: %s", eng.Location)
	}

	if err := store.SaveEngine(project.Engine{Location: "/src/UE5/UE5.sln"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	eng, err = store.Engine()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if eng.Location != "/src/UE5/UE5.sln" {
		t.Errorf("engine location = %s", eng.Location)
	}
	if eng.Root() != "/src/UE5" {
		t.Errorf("engine root = %s, want /src/UE5", eng.Root())
	}
}

func TestEngine_RootFromDirectory(t *testing.T) {
	eng := project.Engine{Location: "/src/UE5"}
	if eng.Root() != "/src/UE5" {
		t.Errorf("plain directory root mangled: %s", eng.Root())
	}
}
