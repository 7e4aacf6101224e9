package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ueforge/ueforge/pkg/project"
	"github.com/ueforge/ueforge/pkg/types"
)

func testStore(t *testing.T) *project.Store {
	t.Helper()
	store, err := project.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store creation failed: %v", err)
	}
	return store
}

func writeUproject(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(`{"EngineAssociation": "5.4"}`), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveProject_ByPathRecordsProject(t *testing.T) {
	store := testStore(t)
	path := writeUproject(t, "MyGame.uproject")

	proj, err := resolveProject(store, path)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if proj.Name != "MyGame" {
		t.Errorf("name = %s, want MyGame", proj.Name)
	}

	// the path form must have recorded the project for later name lookup
	if _, err := store.Find("MyGame"); err != nil {
		t.Errorf("project was not recorded: %v", err)
	}
}

func TestResolveProject_ByName(t *testing.T) {
	store := testStore(t)
	path := writeUproject(t, "MyGame.uproject")
	if _, err := store.Add(path); err != nil {
		t.Fatal(err)
	}

	proj, err := resolveProject(store, "MyGame")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if proj.Location != path {
		t.Errorf("location = %s, want %s", proj.Location, path)
	}
}

func TestResolveProject_EmptyArg(t *testing.T) {
	store := testStore(t)

	if _, err := resolveProject(store, ""); err == nil {
		t.Error("expected error with no recorded projects")
	}

	first := writeUproject(t, "OnlyOne.uproject")
	if _, err := store.Add(first); err != nil {
		t.Fatal(err)
	}
	proj, err := resolveProject(store, "")
	if err != nil {
		t.Fatalf("single project should resolve implicitly: %v", err)
	}
	if proj.Name != "OnlyOne" {
		t.Errorf("name = %s, want OnlyOne", proj.Name)
	}

	second := writeUproject(t, "Another.uproject")
	if _, err := store.Add(second); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveProject(store, ""); err == nil {
		t.Error("expected error with multiple recorded projects")
	}
}

func TestReportOutcome(t *testing.T) {
	now := time.Now()
	base := types.ExecutionState{
		Operation:  types.OperationBuild,
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}

	succeeded := base
	succeeded.Phase = types.PhaseSucceeded
	succeeded.ExitInfo = &types.ExitInfo{Code: 0}
	if err := reportOutcome(succeeded); err != nil {
		t.Errorf("succeeded run reported error: %v", err)
	}

	cancelled := base
	cancelled.Phase = types.PhaseCancelled
	cancelled.ExitInfo = &types.ExitInfo{Code: -1}
	if err := reportOutcome(cancelled); err != nil {
		t.Errorf("cancelled run must not be an error: %v", err)
	}

	failed := base
	failed.Phase = types.PhaseFailed
	failed.ExitInfo = &types.ExitInfo{Code: 3, FailureKind: types.FailureExit}
	if err := reportOutcome(failed); err == nil {
		t.Error("failed run must report an error")
	}
}
