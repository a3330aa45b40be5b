package config

import (
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// GenerateConfigContent renders the default configuration as TOML with every
// value commented out, for `topd genconfig`.
func GenerateConfigContent() (string, error) {
	data, err := toml.Marshal(Default())
	if err != nil {
		return "", err
	}
	return commentOutConfigValues(string(data)), nil
}

// commentOutConfigValues comments out all non-comment, non-blank lines that
// contain configuration values, keeping section headers readable.
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}
		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
