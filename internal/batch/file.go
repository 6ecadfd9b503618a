package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/jobpress/internal/model"
)

// rawFile is the YAML layout of a batch file.
type rawFile struct {
	Jobs []rawJob `yaml:"jobs"`
}

type rawJob struct {
	Topic    string   `yaml:"topic"`
	Text     string   `yaml:"text"`
	TextFile string   `yaml:"text_file"` // relative to the batch file
	URLs     []string `yaml:"urls"`
	Layout   string   `yaml:"layout"`
}

// LoadFile reads a batch file. Descriptors are not validated here; invalid
// ones fail individually when run.
func LoadFile(path string) ([]model.JobDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a batch file body. baseDir resolves text_file entries.
func Parse(data []byte, baseDir string) ([]model.JobDescriptor, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(raw.Jobs) == 0 {
		return nil, fmt.Errorf("batch file has no jobs")
	}

	jobs := make([]model.JobDescriptor, 0, len(raw.Jobs))
	for i, j := range raw.Jobs {
		text := j.Text
		if j.TextFile != "" {
			if text != "" {
				return nil, fmt.Errorf("jobs[%d]: text and text_file are mutually exclusive", i)
			}
			p := j.TextFile
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("jobs[%d]: read text_file: %w", i, err)
			}
			text = string(b)
		}
		jobs = append(jobs, model.JobDescriptor{
			Topic:  j.Topic,
			Text:   text,
			URLs:   j.URLs,
			Layout: j.Layout,
		})
	}
	return jobs, nil
}
