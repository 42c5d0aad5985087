package memory

import (
	"github.com/viant/waypoint/runtime/execution"
	"github.com/viant/waypoint/service/dao"
	"github.com/viant/waypoint/service/dao/criteria"
	"github.com/viant/waypoint/service/dao/store"
)

// Service keeps step history in memory; List accepts an InstanceID parameter.
type Service struct {
	*store.MemoryStore[string, execution.Step]
}

var _ dao.Service[string, execution.Step] = (*Service)(nil)

// New creates an in-memory step store
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, execution.Step](
			func(s *execution.Step) string { return s.ID },
			func(s *execution.Step, parameters []*dao.Parameter) bool {
				return criteria.FilterBy("InstanceID", s.InstanceID, parameters)
			},
		),
	}
}
