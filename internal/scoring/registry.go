package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	errs "github.com/dandarts/dandarts-backend/internal/pkg/errors"
	"github.com/dandarts/dandarts-backend/internal/platform/logger"
)

// variantsPathEnv points at an operator-supplied registry file. When unset
// (or unreadable) the embedded default ships the standard countdown games.
const variantsPathEnv = "MATCH_VARIANTS_YAML"

//go:embed variants.yaml
var embeddedVariants []byte

// VariantSpec is one entry in the variant registry file.
type VariantSpec struct {
	Key           string `yaml:"key"`
	StartingScore int    `yaml:"starting_score"`
	DoubleOut     bool   `yaml:"double_out"`
}

type variantsFile struct {
	Variants []VariantSpec `yaml:"variants"`
}

var (
	registryOnce sync.Once
	registry     map[string]Rules
	registryErr  error
)

func loadRegistry(log *logger.Logger) {
	raw := embeddedVariants
	if path := strings.TrimSpace(os.Getenv(variantsPathEnv)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Variant registry override unreadable, using embedded default", "path", path, "error", err)
		} else {
			log.Info("Loaded variant registry override", "path", path)
			raw = b
		}
	}

	var file variantsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		registryErr = fmt.Errorf("parse variant registry: %w", err)
		return
	}
	if len(file.Variants) == 0 {
		registryErr = fmt.Errorf("variant registry is empty")
		return
	}

	out := make(map[string]Rules, len(file.Variants))
	for i, v := range file.Variants {
		key := strings.TrimSpace(v.Key)
		if key == "" {
			registryErr = fmt.Errorf("variant %d: key is required", i)
			return
		}
		if _, dup := out[key]; dup {
			registryErr = fmt.Errorf("variant %q: duplicate key", key)
			return
		}
		if v.StartingScore < 2 {
			registryErr = fmt.Errorf("variant %q: starting_score %d is not playable", key, v.StartingScore)
			return
		}
		out[key] = &x01Rules{key: key, startingScore: v.StartingScore, doubleOut: v.DoubleOut}
	}
	registry = out
}

// ForVariant resolves the rules for a game variant key. Unknown keys return
// ErrUnknownVariant so callers can reject the command without a retry.
func ForVariant(log *logger.Logger, key string) (Rules, error) {
	registryOnce.Do(func() { loadRegistry(log) })
	if registryErr != nil {
		return nil, registryErr
	}
	r, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownVariant, key)
	}
	return r, nil
}

// Variants returns the registered variant keys in sorted order.
func Variants(log *logger.Logger) ([]string, error) {
	registryOnce.Do(func() { loadRegistry(log) })
	if registryErr != nil {
		return nil, registryErr
	}
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
