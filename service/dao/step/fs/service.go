package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/waypoint/runtime/execution"
	"github.com/viant/waypoint/service/dao"
	"github.com/viant/waypoint/service/dao/criteria"
	"go.uber.org/zap"
)

// Service writes step history as JSON documents under basePath/<instanceID>/.
type Service struct {
	basePath string
	fs       afs.Service
	logger   *zap.Logger
}

var _ dao.Service[string, execution.Step] = (*Service)(nil)

// Save persists a step
func (s *Service) Save(ctx context.Context, step *execution.Step) error {
	if step == nil {
		return dao.ErrNilEntity
	}
	if step.ID == "" || step.InstanceID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("failed to marshal step: %w", err)
	}
	filePath := s.stepPath(step.InstanceID, step.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save step to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a step by ID; step IDs are prefixed with their instance ID.
func (s *Service) Load(ctx context.Context, id string) (*execution.Step, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	filePath, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read step file: %w", err)
	}
	var step execution.Step
	if err = json.Unmarshal(data, &step); err != nil {
		return nil, fmt.Errorf("failed to unmarshal step data: %w", err)
	}
	return &step, nil
}

// Delete removes a step
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	filePath, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.fs.Delete(ctx, filePath)
}

// List returns stored steps, narrowed by an InstanceID parameter
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Step, error) {
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list step files: %w", err)
	}
	var steps []*execution.Step
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("failed to read step file", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		var step execution.Step
		if err := json.Unmarshal(data, &step); err != nil {
			s.logger.Warn("failed to unmarshal step", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		if criteria.FilterBy("InstanceID", step.InstanceID, parameters) {
			steps = append(steps, &step)
		}
	}
	return steps, nil
}

func (s *Service) find(ctx context.Context, id string) (string, error) {
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return "", fmt.Errorf("failed to list step files: %w", err)
	}
	name := id + ".json"
	for _, object := range objects {
		if !object.IsDir() && object.Name() == name {
			return object.URL(), nil
		}
	}
	return "", dao.ErrNotFound
}

func (s *Service) stepPath(instanceID, id string) string {
	return url.Join(s.basePath, instanceID, id+".json")
}

// New creates a filesystem step store
func New(basePath string, logger *zap.Logger) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fs := afs.New()
	ctx := context.Background()
	if exists, _ := fs.Exists(ctx, basePath); !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fs,
		logger:   logger,
	}, nil
}
