package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnvExpr replaces ${env.KEY} with the value of environment variable KEY.
// Unset variables expand to "". A malformed key leaves the prefix as literal
// text and scanning resumes after it.
func expandEnvExpr(value string) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], envPrefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		keyStart := i + idx + len(envPrefix)
		keyEnd := strings.IndexByte(value[keyStart:], '}')
		if keyEnd < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		key := value[keyStart : keyStart+keyEnd]
		if !isEnvKey(key) {
			b.WriteString(envPrefix)
			i = keyStart
			continue
		}
		b.WriteString(os.Getenv(key))
		i = keyStart + keyEnd + 1
	}
	return b.String()
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
