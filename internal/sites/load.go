package sites

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type registryFile struct {
	Sites []*Site `yaml:"sites"`
}

// Load reads site descriptors from a YAML file. An empty path returns the
// built-in registry. Descriptors from the file fully replace the built-ins
// so that operators can pin selectors without rebuilding.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	var rf registryFile
	if err := cleanenv.ReadConfig(path, &rf); err != nil {
		return nil, fmt.Errorf("failed to read sites config %s: %w", path, err)
	}
	reg, err := newRegistry(rf.Sites)
	if err != nil {
		return nil, fmt.Errorf("invalid sites config %s: %w", path, err)
	}
	return reg, nil
}
