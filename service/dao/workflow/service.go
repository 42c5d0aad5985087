package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/waypoint/internal/yml"
	"github.com/viant/waypoint/model"
	"github.com/viant/waypoint/model/graph"
	"github.com/viant/waypoint/service/meta"
	"gopkg.in/yaml.v3"
)

// Service loads workflow definitions
type Service struct {
	metaService  *meta.Service
	cacheEnabled bool
	mux          sync.RWMutex
	cache        map[string]*model.Workflow
}

// DecodeYAML decodes a workflow from YAML
func (s *Service) DecodeYAML(encoded []byte) (*model.Workflow, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(encoded, &node); err != nil {
		return nil, err
	}
	return s.ParseWorkflow("", &node)
}

// Load loads a workflow from YAML at the specified URL
func (s *Service) Load(ctx context.Context, URL string) (*model.Workflow, error) {
	if filepath.Ext(URL) == "" {
		URL += ".yaml"
	}
	if s.cacheEnabled {
		s.mux.RLock()
		cached, ok := s.cache[URL]
		s.mux.RUnlock()
		if ok {
			return cached, nil
		}
	}
	var node yaml.Node
	if err := s.metaService.Load(ctx, URL, &node); err != nil {
		return nil, fmt.Errorf("failed to load workflow from %s: %w", URL, err)
	}
	workflow, err := s.ParseWorkflow(URL, &node)
	if err != nil {
		return nil, err
	}
	if s.cacheEnabled {
		s.mux.Lock()
		s.cache[URL] = workflow
		s.mux.Unlock()
	}
	return workflow, nil
}

// ParseWorkflow converts a YAML document into a validated workflow
func (s *Service) ParseWorkflow(URL string, node *yaml.Node) (*model.Workflow, error) {
	workflow := &model.Workflow{
		Source: &model.Source{URL: URL},
		Name:   getWorkflowNameFromURL(URL),
	}
	if err := s.parseWorkflow((*yml.Node)(node), workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow from %s: %w", URL, err)
	}
	if workflow.Name == "" {
		workflow.Name = generateAnonymousName()
	}
	if workflow.Entrypoint == "" && len(workflow.Actions) > 0 {
		workflow.Entrypoint = workflow.Actions[0].Name
	}
	if issues := workflow.Validate(); len(issues) > 0 {
		return nil, issues[0]
	}
	return workflow, nil
}

// getWorkflowNameFromURL extracts workflow name from URL (file name without extension)
func getWorkflowNameFromURL(URL string) string {
	if URL == "" {
		return ""
	}
	base := filepath.Base(URL)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Service) parseWorkflow(node *yml.Node, workflow *model.Workflow) error {
	rootNode := node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		rootNode = (*yml.Node)(node.Content[0])
	}
	if rootNode.Kind != yaml.MappingNode {
		return fmt.Errorf("workflow document should be a mapping")
	}
	return rootNode.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			workflow.Name = valueNode.Value
		case "description":
			workflow.Description = valueNode.Value
		case "version":
			workflow.Version = valueNode.Value
		case "entrypoint":
			workflow.Entrypoint = valueNode.Value
		case "actions":
			actions, err := parseActions(valueNode)
			if err != nil {
				return err
			}
			workflow.Actions = actions
		case "transitions":
			if valueNode.Kind != yaml.SequenceNode {
				return fmt.Errorf("transitions should be a sequence")
			}
			return valueNode.Items(func(_ int, item *yml.Node) error {
				transition, err := parseTransition(item)
				if err != nil {
					return err
				}
				workflow.Transitions = append(workflow.Transitions, transition)
				return nil
			})
		}
		return nil
	})
}

// parseActions accepts either a sequence of action mappings with a name
// field or a mapping keyed by action name.
func parseActions(node *yml.Node) ([]*graph.Action, error) {
	var actions []*graph.Action
	switch node.Kind {
	case yaml.SequenceNode:
		err := node.Items(func(index int, item *yml.Node) error {
			action, err := parseAction("", item)
			if err != nil {
				return err
			}
			if action.Name == "" {
				return fmt.Errorf("action at position %d has no name", index)
			}
			actions = append(actions, action)
			return nil
		})
		return actions, err
	case yaml.MappingNode:
		err := node.Pairs(func(name string, item *yml.Node) error {
			action, err := parseAction(name, item)
			if err != nil {
				return err
			}
			actions = append(actions, action)
			return nil
		})
		return actions, err
	}
	return nil, fmt.Errorf("actions should be a sequence or a mapping")
}

func parseAction(name string, node *yml.Node) (*graph.Action, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("action %s should be a mapping", name)
	}
	action := &graph.Action{Name: name}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "name":
			action.Name = valueNode.Value
		case "service":
			action.Service = valueNode.Value
		case "method", "action":
			action.Method = valueNode.Value
		case "input":
			schema, ok := valueNode.Interface().(map[string]interface{})
			if !ok {
				return fmt.Errorf("action %s input should be a JSON schema mapping", action.Name)
			}
			action.Input = schema
		case "with":
			with, ok := valueNode.Interface().(map[string]interface{})
			if !ok {
				return fmt.Errorf("action %s with should be a mapping", action.Name)
			}
			action.With = with
		}
		return nil
	})
	return action, err
}

func parseTransition(node *yml.Node) (*graph.Transition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("transition node should be a mapping")
	}
	transition := &graph.Transition{}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "from":
			transition.From = valueNode.Value
		case "to":
			transition.To = valueNode.Value
		case "when":
			condition, err := parseCondition(valueNode)
			if err != nil {
				return err
			}
			transition.When = condition
		}
		return nil
	})
	return transition, err
}

// parseCondition accepts a key shorthand (when: feedback) or a mapping
func parseCondition(node *yml.Node) (*graph.Condition, error) {
	if node.Kind == yaml.ScalarNode {
		return &graph.Condition{Key: node.Value}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("when should be a key or a mapping")
	}
	condition := &graph.Condition{}
	err := node.Pairs(func(key string, valueNode *yml.Node) error {
		switch strings.ToLower(key) {
		case "key":
			condition.Key = valueNode.Value
		case "empty":
			flag, ok := valueNode.Interface().(bool)
			if !ok {
				return fmt.Errorf("when.empty should be a boolean")
			}
			condition.Empty = &flag
		case "equals":
			condition.Equals = valueNode.Interface()
		}
		return nil
	})
	return condition, err
}

// New creates a new workflow service instance
func New(opts ...Option) *Service {
	ret := &Service{
		metaService: meta.New(nil, ""),
		cache:       make(map[string]*model.Workflow),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
