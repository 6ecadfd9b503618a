// Package extract fills a schema from normalized text by rule-based matching.
// Every value it reports was found verbatim in the text; a field that cannot
// be found, or that has conflicting values, is reported missing instead.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/schema"
)

// Extractor implements the fact extraction stage.
type Extractor struct {
	rephraser model.Rephraser // optional; nil disables rephrasing
	logger    *slog.Logger
}

// NewExtractor creates an extractor. rephraser may be nil.
func NewExtractor(rephraser model.Rephraser, logger *slog.Logger) *Extractor {
	return &Extractor{rephraser: rephraser, logger: logger}
}

// Extract returns one record per schema field, in schema order. Partial
// coverage is expected; the only error is an unreachable rephraser.
func (e *Extractor) Extract(ctx context.Context, text string, s *schema.Schema, topic string) (*model.ExtractionResult, error) {
	anchors := topicAnchors(text, topic)
	stops := labelStarts(text, s)
	result := &model.ExtractionResult{
		Schema:  s.Name,
		Version: s.Version,
		Fields:  make([]model.FieldRecord, 0, len(s.Fields)),
	}

	for _, f := range s.Fields {
		var cands []candidate
		switch f.Shape {
		case model.ShapeTable:
			cands = tableCandidates(text, f)
		case model.ShapeQA:
			cands = qaCandidates(text)
		default:
			cands = scalarCandidates(text, f, stops)
		}

		c, reason := resolve(text, cands, anchors)
		if reason != "" {
			if reason == model.ReasonAmbiguous {
				e.logger.Debug("conflicting values, marking missing", "field", f.Name, "candidates", len(cands))
			}
			result.Fields = append(result.Fields, model.MissingField(f.Name, f.Shape, reason))
			continue
		}

		rec := model.FieldRecord{
			Name:  f.Name,
			Shape: f.Shape,
			Value: c.value,
			Items: c.items,
			Rows:  c.rows,
			Span:  c.span,
			ISO:   c.iso,
		}
		if f.Rephrase && e.rephraser != nil {
			if err := e.rephrase(ctx, &rec); err != nil {
				return nil, err
			}
		}
		result.Fields = append(result.Fields, rec)
	}

	return result, nil
}

func (e *Extractor) rephrase(ctx context.Context, rec *model.FieldRecord) error {
	one := func(text string) (string, error) {
		out, err := e.rephraser.Rephrase(ctx, rec.Name, text)
		if err != nil {
			return "", fmt.Errorf("%w: rephrase %s: %v", model.ErrExtractionUnavailable, rec.Name, err)
		}
		if out == "" || out == text {
			return text, nil
		}
		if !sameNumbers(text, out) {
			e.logger.Warn("rephrasing changed numbers, keeping source text", "field", rec.Name)
			return text, nil
		}
		rec.Rephrased = true
		return out, nil
	}

	switch rec.Shape {
	case model.ShapeText:
		out, err := one(rec.Value)
		if err != nil {
			return err
		}
		rec.Value = out
	case model.ShapeList:
		items := make([]string, len(rec.Items))
		for i, it := range rec.Items {
			out, err := one(it)
			if err != nil {
				return err
			}
			items[i] = out
		}
		rec.Items = items
	}
	return nil
}

var digitRunRe = regexp.MustCompile(`\d(?:[\d,]*\d)?`)

// sameNumbers reports whether a and b contain the same digit sequences in
// the same order, ignoring grouping commas.
func sameNumbers(a, b string) bool {
	na := digitRunRe.FindAllString(a, -1)
	nb := digitRunRe.FindAllString(b, -1)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if digitKey(na[i]) != digitKey(nb[i]) {
			return false
		}
	}
	return true
}
