package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/waypoint/service/dao"
)

func TestFilterBy(t *testing.T) {
	type testCase struct {
		name       string
		value      string
		parameters []*dao.Parameter
		expected   bool
	}

	tests := []testCase{
		{name: "no parameters", value: "s1", expected: true},
		{name: "single match", value: "s1", parameters: []*dao.Parameter{dao.NewParameter("InstanceID", "s1")}, expected: true},
		{name: "single mismatch", value: "s2", parameters: []*dao.Parameter{dao.NewParameter("InstanceID", "s1")}, expected: false},
		{name: "any of", value: "s2", parameters: []*dao.Parameter{dao.NewParameter("InstanceID", "s1", "s2")}, expected: true},
		{name: "other name ignored", value: "s2", parameters: []*dao.Parameter{dao.NewParameter("State", "failed")}, expected: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FilterBy("InstanceID", tc.value, tc.parameters))
		})
	}
}
