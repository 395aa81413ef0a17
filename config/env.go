package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references in s. A reference to an unset
// variable is an error; "$$" stands for a literal "$".
func expandEnv(s string) (string, error) {
	const dollar = "\x00H5VIEW_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	var missing []string
	for _, m := range envRef.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(m[1]); !ok && !slices.Contains(missing, m[1]) {
			missing = append(missing, m[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	s = envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
	return strings.ReplaceAll(s, dollar, "$"), nil
}

// expand expands environment references in the source location.
func (s *SourceConfig) expand() error {
	for _, field := range []*string{&s.URL, &s.File} {
		v, err := expandEnv(*field)
		if err != nil {
			return err
		}
		*field = v
	}
	return nil
}
