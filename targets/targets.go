package targets

import (
	_ "embed"
	"errors"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets
var ErrTargetNotFound = errors.New("target not found")

func All() Targets {
	return targets
}

type Targets []TargetInfo
type TargetInfo struct {
	Architecture string   `yaml:"architecture"`
	GoArch       string   `yaml:"goarch"`
	Triple       string   `yaml:"triple"`
	Aliases      []string `yaml:"aliases"`
	PreserveNone bool     `yaml:"preserveNone"`
}

// Matches reports whether name refers to this target.
func (t TargetInfo) Matches(name string) bool {
	name = strings.ToLower(name)
	return t.Architecture == name || t.Triple == name || slices.Contains(t.Aliases, name)
}

func (t Targets) Find(name string) (TargetInfo, error) {
	for _, target := range t {
		if target.Matches(name) {
			return target, nil
		}
	}
	return TargetInfo{}, ErrTargetNotFound
}

// Names returns the architecture names of the targets in sorted order.
func (t Targets) Names() []string {
	names := make([]string, len(t))
	for i, target := range t {
		names[i] = target.Architecture
	}
	slices.Sort(names)
	return names
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}
