// Package config loads the one on-disk artifact the core reads: an
// optional startup command file naming FIB routes and connections to seed
// before the reactor starts, per spec.md 6 ("Persistent state: None... must
// be re-issued on restart").
//
// Parsing uses github.com/goccy/go-yaml, the same way the teacher's
// toolutils.ReadYaml (fw/cmd/cmd.go) reads its own startup configuration.
package config

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
)

// RouteSpec seeds one FIB route, mirroring the AddRoute control command
// fields from spec.md 6.
type RouteSpec struct {
	Prefix   string `yaml:"prefix"`
	NextHop  string `yaml:"next-hop"`
	Cost     uint64 `yaml:"cost,omitempty"`
	Strategy string `yaml:"strategy,omitempty"`
}

// ConnectionSpec seeds one connection, mirroring AddConnectionEthernet/IP.
type ConnectionSpec struct {
	Kind         string `yaml:"kind"` // "tcp", "unix", "websocket", "quic"
	Peer         string `yaml:"peer"`
	SymbolicName string `yaml:"symbolic-name"`
}

// StartupFile is the top-level shape of the optional startup command file.
type StartupFile struct {
	Connections []ConnectionSpec `yaml:"connections,omitempty"`
	Routes      []RouteSpec      `yaml:"routes,omitempty"`
}

// Load reads and parses a startup command file. An absent path is not an
// error: the forwarder simply starts with an empty FIB and connection
// table, per spec.md 6's "Environment" row (only this one path is read from
// argv; there is no other configuration loading).
func Load(path string) (*StartupFile, error) {
	if path == "" {
		return &StartupFile{}, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var sf StartupFile
	if err := yaml.Unmarshal(buf, &sf); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &sf, nil
}
