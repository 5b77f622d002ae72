package h5p

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DialogCards is the interactive card-deck library packages depend on.
var DialogCards = Library{MachineName: "H5P.Dialogcards", MajorVersion: 1, MinorVersion: 9}

// Library identifies a content library by machine name and major.minor version.
type Library struct {
	MachineName  string `json:"machineName" yaml:"machineName"`
	MajorVersion int    `json:"majorVersion" yaml:"majorVersion"`
	MinorVersion int    `json:"minorVersion" yaml:"minorVersion"`
}

// String formats the library as "Name major.minor".
func (l Library) String() string {
	return fmt.Sprintf("%s %d.%d", l.MachineName, l.MajorVersion, l.MinorVersion)
}

// ParseLibrary parses "Name major.minor", the format String produces.
func ParseLibrary(s string) (Library, error) {
	name, version, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok || name == "" {
		return Library{}, fmt.Errorf("%w: %q (want \"Name major.minor\")", ErrInvalidLibrary, s)
	}

	majorStr, minorStr, ok := strings.Cut(strings.TrimSpace(version), ".")
	if !ok {
		return Library{}, fmt.Errorf("%w: %q has no minor version", ErrInvalidLibrary, s)
	}
	major, err := strconv.Atoi(majorStr)
	if err != nil || major < 0 {
		return Library{}, fmt.Errorf("%w: %q has a bad major version", ErrInvalidLibrary, s)
	}
	minor, err := strconv.Atoi(minorStr)
	if err != nil || minor < 0 {
		return Library{}, fmt.Errorf("%w: %q has a bad minor version", ErrInvalidLibrary, s)
	}

	return Library{MachineName: name, MajorVersion: major, MinorVersion: minor}, nil
}

// LibraryRegistry reports which content libraries the host has installed.
type LibraryRegistry interface {
	HasLibrary(ctx context.Context, lib Library) (bool, error)
}

// StaticRegistry is an in-memory LibraryRegistry. It is safe for concurrent use.
type StaticRegistry struct {
	mu   sync.RWMutex
	libs map[Library]struct{}
}

var _ LibraryRegistry = (*StaticRegistry)(nil)

// NewStaticRegistry creates a registry holding libs.
func NewStaticRegistry(libs ...Library) *StaticRegistry {
	r := &StaticRegistry{libs: make(map[Library]struct{}, len(libs))}
	for _, lib := range libs {
		r.libs[lib] = struct{}{}
	}
	return r
}

// Install adds lib to the registry.
func (r *StaticRegistry) Install(lib Library) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.libs[lib] = struct{}{}
}

// HasLibrary reports an exact name and major.minor match.
func (r *StaticRegistry) HasLibrary(ctx context.Context, lib Library) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.libs[lib]
	return ok, nil
}
