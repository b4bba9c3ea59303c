package builder

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the contents of a configuration file. Unset fields leave the
// corresponding option untouched.
type Config struct {
	WriteList   *string  `yaml:"writeList"`
	LoadList    *string  `yaml:"loadList"`
	Infect      *bool    `yaml:"infect"`
	Tags        []string `yaml:"tags"`
	Target      string   `yaml:"target"`
	Verbosity   string   `yaml:"verbosity"`
	AllPackages *bool    `yaml:"allPackages"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	config := &Config{}
	if err = yaml.Unmarshal(buf, config); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s: %v", path, err)
	}
	return config, nil
}

// Apply overrides the options with every field set in the configuration.
func (c *Config) Apply(options *Options) error {
	if c.WriteList != nil {
		options.WriteList = *c.WriteList
	}
	if c.LoadList != nil {
		options.LoadList = *c.LoadList
	}
	if c.Infect != nil {
		options.Infect = *c.Infect
	}
	if c.AllPackages != nil {
		options.AllPackages = *c.AllPackages
	}
	if len(c.Tags) > 0 {
		options.BuildTags = c.Tags
	}
	if len(c.Target) > 0 {
		options.Target = c.Target
	}
	if len(c.Verbosity) > 0 {
		verbosity, err := ParseVerbosity(c.Verbosity)
		if err != nil {
			return err
		}
		options.Verbosity = verbosity
	}
	return nil
}
