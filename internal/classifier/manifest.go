package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// LoadManifest reads an ordered JSON array of feature names from path. When the file
// does not exist it falls back to the names the model artifact declares.
func LoadManifest(path string, declared []string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(strings.TrimSpace(string(data))) == 0) {
		if len(declared) == 0 {
			return nil, fmt.Errorf("%w: %s missing and model declares no feature names", ErrManifestInvalid, path)
		}
		return ValidateManifest(declared)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestInvalid, path, err)
	}
	return ValidateManifest(names)
}

// ValidateManifest checks names are non-empty and unique and returns a copy.
func ValidateManifest(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrManifestInvalid)
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return nil, fmt.Errorf("%w: blank name at position %d", ErrManifestInvalid, i)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrManifestInvalid, n)
		}
		seen[n] = struct{}{}
		out[i] = n
	}
	return out, nil
}
