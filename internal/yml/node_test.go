package yml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNode_Interface(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
name: assistant
capacity: 2
ratio: 0.5
enabled: true
missing: null
steps: [ask, review]
`), &doc))
	root := (*Node)(doc.Content[0])
	var keys []string
	require.NoError(t, root.Pairs(func(key string, _ *Node) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"name", "capacity", "ratio", "enabled", "missing", "steps"}, keys)
	assert.EqualValues(t, map[string]interface{}{
		"name":     "assistant",
		"capacity": 2,
		"ratio":    0.5,
		"enabled":  true,
		"missing":  nil,
		"steps":    []interface{}{"ask", "review"},
	}, root.Interface())
}
