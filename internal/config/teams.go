package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alexunderch/PufferLib/emulation"
	"gopkg.in/yaml.v3"
)

// teamsFile is the on-disk team layout:
//
//	teams:
//	  - id: red
//	    agents: [agent_0, agent_1]
type teamsFile struct {
	Teams emulation.Teams `yaml:"teams"`
}

// ParseTeams decodes a YAML team layout. Unknown fields are rejected.
func ParseTeams(data []byte) (emulation.Teams, error) {
	var f teamsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse teams: %w", err)
	}
	if len(f.Teams) == 0 {
		return nil, fmt.Errorf("parse teams: %w: no teams listed", emulation.ErrInvalidTeams)
	}
	return f.Teams, nil
}

// LoadTeams reads a YAML team layout from path.
func LoadTeams(path string) (emulation.Teams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read teams: %w", err)
	}
	return ParseTeams(data)
}
