package criteria

import (
	"github.com/viant/waypoint/service/dao"
)

// FilterBy reports whether value satisfies the parameter with the given name.
// Parameters with other names are ignored; a missing parameter matches.
func FilterBy(name, value string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if value != actual {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range actual {
				if value == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}
