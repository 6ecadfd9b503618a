// Package pipeline sequences normalization, extraction and rendering for one
// job descriptor.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobpress/internal/extract"
	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/normalize"
	"github.com/amishk599/jobpress/internal/render"
)

// Pipeline owns the generate flow: normalize → extract → render. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	normalizer    *normalize.Normalizer
	extractor     *extract.Extractor
	renderer      *render.Renderer
	layouts       map[string]*Layout
	defaultLayout string
	logger        *slog.Logger
}

// New creates a pipeline wired with all its stages.
func New(
	normalizer *normalize.Normalizer,
	extractor *extract.Extractor,
	renderer *render.Renderer,
	layouts map[string]*Layout,
	defaultLayout string,
	logger *slog.Logger,
) (*Pipeline, error) {
	if _, ok := layouts[defaultLayout]; !ok {
		return nil, fmt.Errorf("default layout %q is not defined (have %v)", defaultLayout, LayoutNames(layouts))
	}
	return &Pipeline{
		normalizer:    normalizer,
		extractor:     extractor,
		renderer:      renderer,
		layouts:       layouts,
		defaultLayout: defaultLayout,
		logger:        logger,
	}, nil
}

// Layouts returns the configured layouts sorted by name.
func (p *Pipeline) Layouts() []*Layout {
	out := make([]*Layout, 0, len(p.layouts))
	for _, name := range LayoutNames(p.layouts) {
		out = append(out, p.layouts[name])
	}
	return out
}

// DefaultLayout is the layout used when a job names none.
func (p *Pipeline) DefaultLayout() string {
	return p.defaultLayout
}

// Generate produces one document. Every failure is a *model.PipelineError
// naming the stage; no partial document is returned.
func (p *Pipeline) Generate(ctx context.Context, job model.JobDescriptor) (*model.Document, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	start := time.Now()

	if err := job.Validate(); err != nil {
		return nil, stageErr(model.StageInput, err)
	}
	layoutName := job.Layout
	if layoutName == "" {
		layoutName = p.defaultLayout
	}
	layout, ok := p.layouts[layoutName]
	if !ok {
		return nil, stageErr(model.StageInput, &model.InvalidJobError{Reason: fmt.Sprintf("unknown layout %q", layoutName)})
	}

	logger.Info("generating article", "topic", job.Topic, "layout", layout.Name, "urls", len(job.SourceURLs()))

	if err := ctx.Err(); err != nil {
		return nil, stageErr(model.StageNormalize, err)
	}
	norm, err := p.normalizer.Normalize(ctx, job)
	if err != nil {
		return nil, stageErr(model.StageNormalize, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, stageErr(model.StageExtract, err)
	}
	res, err := p.extractor.Extract(ctx, norm.Text, layout.Schema, job.Topic)
	if err != nil {
		return nil, stageErr(model.StageExtract, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, stageErr(model.StageRender, err)
	}
	doc, err := p.renderer.Render(res, layout.Template, job.Topic)
	if err != nil {
		return nil, stageErr(model.StageRender, err)
	}

	doc.RunID = runID
	doc.Failures = norm.Failures
	doc.Truncated = norm.Truncated
	doc.Fields = res.Fields

	logger.Info("article generated",
		"fields", len(res.Fields),
		"missing", len(res.Missing()),
		"placeholders", len(doc.Missing),
		"failed_sources", len(doc.Failures),
		"truncated", doc.Truncated,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return doc, nil
}

func stageErr(stage model.Stage, err error) error {
	return &model.PipelineError{Stage: stage, Err: err}
}
