// Package project inspects .uproject files and persists known project and
// engine locations between runs
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EngineVersionFromSource marks projects bound to a source-built
	// engine via a brace-form EngineAssociation GUID. Packaging is only
	// offered for these.
	EngineVersionFromSource = "From Source"

	// EngineVersionUnknown is used when a .uproject carries no
	// EngineAssociation at all.
	EngineVersionUnknown = "Unknown"
)

// Project describes one known Unreal project
type Project struct {
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	EngineVersion string   `json:"engineVersion"`
	Plugins       []string `json:"plugins,omitempty"`
}

// FromSource reports whether the project requires a source-built engine
func (p Project) FromSource() bool {
	return p.EngineVersion == EngineVersionFromSource
}

// uprojectFile models the fields of a .uproject descriptor we care about
type uprojectFile struct {
	EngineAssociation string `json:"EngineAssociation"`
	Plugins           []struct {
		Name string `json:"Name"`
	} `json:"Plugins"`
}

// Load builds a Project from a .uproject file on disk
func Load(location string) (Project, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return Project{}, fmt.Errorf("failed to read uproject: %w", err)
	}

	var desc uprojectFile
	if err := json.Unmarshal(data, &desc); err != nil {
		return Project{}, fmt.Errorf("failed to parse uproject %s: %w", location, err)
	}

	proj := Project{
		Name:          strings.TrimSuffix(filepath.Base(location), filepath.Ext(location)),
		Location:      location,
		EngineVersion: engineVersion(desc.EngineAssociation),
	}
	for _, plugin := range desc.Plugins {
		proj.Plugins = append(proj.Plugins, plugin.Name)
	}
	return proj, nil
}

// engineVersion interprets the EngineAssociation value: a brace-form GUID
// means the project is pinned to a source build rather than a launcher
// install.
func engineVersion(association string) string {
	switch {
	case association == "":
		return EngineVersionUnknown
	case strings.HasPrefix(association, "{") && strings.HasSuffix(association, "}"):
		return EngineVersionFromSource
	default:
		return association
	}
}

// Engine records the path of a source-built engine checkout
type Engine struct {
	Location string `json:"location"`
}

// Root returns the engine root directory. The recorded location may be the
// UE5.sln solution file from the original workflow; its parent directory
// is the root in that case.
func (e Engine) Root() string {
	if strings.EqualFold(filepath.Ext(e.Location), ".sln") {
		return filepath.Dir(e.Location)
	}
	return e.Location
}

// Store persists known projects and the engine location as JSON files in
// one directory
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) projectsPath() string { return filepath.Join(s.dir, "projects.json") }
func (s *Store) enginePath() string   { return filepath.Join(s.dir, "engine.json") }

// Projects loads the known project list. A missing file is an empty list.
func (s *Store) Projects() ([]Project, error) {
	data, err := os.ReadFile(s.projectsPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read projects file: %w", err)
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse projects file: %w", err)
	}
	return projects, nil
}

// SaveProjects writes the project list
func (s *Store) SaveProjects(projects []Project) error {
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.projectsPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write projects file: %w", err)
	}
	return nil
}

// Add loads the .uproject at location and records it. When the location is
// already known the existing entry is returned unchanged.
func (s *Store) Add(location string) (Project, error) {
	projects, err := s.Projects()
	if err != nil {
		return Project{}, err
	}
	for _, existing := range projects {
		if existing.Location == location {
			return existing, nil
		}
	}

	proj, err := Load(location)
	if err != nil {
		return Project{}, err
	}
	projects = append(projects, proj)
	if err := s.SaveProjects(projects); err != nil {
		return Project{}, err
	}
	return proj, nil
}

// Find returns the recorded project with the given name
func (s *Store) Find(name string) (Project, error) {
	projects, err := s.Projects()
	if err != nil {
		return Project{}, err
	}
	for _, proj := range projects {
		if proj.Name == name {
			return proj, nil
		}
	}
	return Project{}, fmt.Errorf("unknown project: %s", name)
}

// Engine loads the recorded engine location. A missing file yields a zero
// Engine and no error.
func (s *Store) Engine() (Engine, error) {
	data, err := os.ReadFile(s.enginePath())
	if os.IsNotExist(err) {
		return Engine{}, nil
	}
	if err != nil {
		return Engine{}, fmt.Errorf("failed to read engine file: %w", err)
	}
	var eng Engine
	if err := json.Unmarshal(data, &eng); err != nil {
		return Engine{}, fmt.Errorf("failed to parse engine file: %w", err)
	}
	return eng, nil
}

// SaveEngine records the engine location
func (s *Store) SaveEngine(eng Engine) error {
	data, err := json.MarshalIndent(eng, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.enginePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write engine file: %w", err)
	}
	return nil
}
