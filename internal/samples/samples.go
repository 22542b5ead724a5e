// Package samples installs the bundled report templates.
package samples

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

//go:embed templates
var templatesFS embed.FS

const manifestPath = "templates/manifest.yaml"

// Sample is one bundled template as described by the manifest.
type Sample struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	File        string `yaml:"file"`
}

type manifest struct {
	Templates []Sample `yaml:"templates"`
}

// TemplateRepository is the template storage seeding needs.
type TemplateRepository interface {
	FindByName(ctx context.Context, name string) (*model.ReportTemplate, error)
	Create(ctx context.Context, template *model.ReportTemplate) error
}

// BlobWriter stores template content.
type BlobWriter interface {
	Put(ctx context.Context, name string, content []byte) (string, error)
}

// Load returns the bundled samples.
func Load() ([]Sample, error) {
	raw, err := templatesFS.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse sample manifest: %w", err)
	}
	for _, s := range m.Templates {
		if s.Name == "" || s.Type == "" || s.File == "" {
			return nil, fmt.Errorf("sample manifest entry %q is incomplete", s.Name)
		}
	}
	return m.Templates, nil
}

// Content returns the template text of a sample.
func (s Sample) Content() ([]byte, error) {
	return templatesFS.ReadFile("templates/" + s.File)
}

// Seed installs every sample whose name is not taken yet and returns how many
// were installed.
func Seed(ctx context.Context, templates TemplateRepository, blobs BlobWriter) (int, error) {
	logger := log.NewLogger(ctx)
	samples, err := Load()
	if err != nil {
		return 0, err
	}

	installed := 0
	for _, s := range samples {
		_, err := templates.FindByName(ctx, s.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrTemplateNotFound) {
			return installed, fmt.Errorf("failed to look up sample %q: %w", s.Name, err)
		}

		content, err := s.Content()
		if err != nil {
			return installed, fmt.Errorf("failed to read sample %q: %w", s.Name, err)
		}
		key, err := blobs.Put(ctx, s.File, content)
		if err != nil {
			return installed, fmt.Errorf("failed to store sample %q: %w", s.Name, err)
		}
		description := s.Description
		record := &model.ReportTemplate{
			Name:        s.Name,
			Description: &description,
			FilePath:    key,
			Type:        s.Type,
			IsSample:    true,
		}
		if err := templates.Create(ctx, record); err != nil {
			return installed, fmt.Errorf("failed to register sample %q: %w", s.Name, err)
		}
		logger.Info("installed sample template", zap.String("name", s.Name), zap.Uint("id", record.ID))
		installed++
	}
	return installed, nil
}
