package expander

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	type draft struct {
		Title string
		Lines []string
	}
	state := map[string]interface{}{
		"answer":   "yes",
		"count":    3,
		"feedback": []interface{}{"shorter", "friendlier"},
		"meta":     map[string]interface{}{"author": "bob"},
		"draft":    &draft{Title: "Hello", Lines: []string{"one", "two"}},
	}

	type testCase struct {
		name     string
		input    interface{}
		expected interface{}
	}

	tests := []testCase{
		{name: "plain string", input: "literal", expected: "literal"},
		{name: "pure reference keeps type", input: "${feedback}", expected: []interface{}{"shorter", "friendlier"}},
		{name: "pure int reference", input: "${count}", expected: 3},
		{name: "embedded reference", input: "answer: ${answer}!", expected: "answer: yes!"},
		{name: "multiple references", input: "${answer}/${count}", expected: "yes/3"},
		{name: "map path", input: "${meta.author}", expected: "bob"},
		{name: "array element", input: "${feedback[1]}", expected: "friendlier"},
		{name: "struct field", input: "${draft.title}", expected: "Hello"},
		{name: "struct slice element", input: "${draft.lines[0]}", expected: "one"},
		{name: "unknown pure reference", input: "${missing}", expected: nil},
		{name: "unknown embedded reference", input: "x${missing}y", expected: "xy"},
		{name: "out of range", input: "${feedback[5]}", expected: nil},
		{
			name:     "nested map",
			input:    map[string]interface{}{"to": "${meta.author}", "items": []interface{}{"${answer}", 1}},
			expected: map[string]interface{}{"to": "bob", "items": []interface{}{"yes", 1}},
		},
		{name: "non string passthrough", input: 42, expected: 42},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := Expand(tc.input, state)
			assert.NoError(t, err)
			assert.EqualValues(t, tc.expected, actual)
		})
	}
}
