package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/jobpress/internal/model"
)

type articleRequest struct {
	Topic  string   `json:"topic"`
	Text   string   `json:"text"`
	URLs   []string `json:"urls"`
	Layout string   `json:"layout"`
}

type failureDTO struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

type articleResponse struct {
	ID        string       `json:"id"`
	Topic     string       `json:"topic"`
	Layout    string       `json:"layout"`
	Markdown  string       `json:"markdown"`
	Missing   []string     `json:"missing"`
	Failures  []failureDTO `json:"failures"`
	Truncated bool         `json:"truncated"`
}

type layoutDTO struct {
	Name          string `json:"name"`
	Schema        string `json:"schema"`
	SchemaVersion int    `json:"schema_version"`
	Fields        int    `json:"fields"`
	Default       bool   `json:"default"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listLayouts(c *gin.Context) {
	def := s.gen.DefaultLayout()
	var out []layoutDTO
	for _, l := range s.gen.Layouts() {
		out = append(out, layoutDTO{
			Name:          l.Name,
			Schema:        l.Schema.Name,
			SchemaVersion: l.Schema.Version,
			Fields:        len(l.Template.Fields()),
			Default:       l.Name == def,
		})
	}
	c.JSON(http.StatusOK, gin.H{"layouts": out})
}

// createArticle is the POST /articles endpoint.
func (s *Server) createArticle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxBodyBytes)

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	doc, err := s.gen.Generate(ctx, model.JobDescriptor{
		Topic:  req.Topic,
		Text:   req.Text,
		URLs:   req.URLs,
		Layout: req.Layout,
	})
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}

	if err := s.archive.Save(ctx, doc); err != nil {
		s.logger.Warn("archive save failed", "run_id", doc.RunID, "error", err)
	}

	c.JSON(http.StatusOK, toResponse(doc))
}

func (s *Server) listArticles(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}
	list, err := s.archive.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []*model.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": list})
}

func (s *Server) getArticle(c *gin.Context) {
	a, err := s.archive.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// errorResponse maps a pipeline error to a status code and JSON body.
func errorResponse(err error) (int, gin.H) {
	var invalid *model.InvalidJobError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest, gin.H{"error": invalid.Error()}
	}
	var pe *model.PipelineError
	staged := errors.As(err, &pe)
	if errors.Is(err, model.ErrExtractionUnavailable) {
		body := gin.H{"error": err.Error()}
		if staged {
			body["stage"] = string(pe.Stage)
		}
		return http.StatusServiceUnavailable, body
	}
	if staged {
		return http.StatusUnprocessableEntity, gin.H{"stage": string(pe.Stage), "error": pe.Err.Error()}
	}
	return http.StatusInternalServerError, gin.H{"error": err.Error()}
}

func toResponse(doc *model.Document) articleResponse {
	resp := articleResponse{
		ID:        doc.RunID,
		Topic:     doc.Topic,
		Layout:    doc.Layout,
		Markdown:  doc.Markdown,
		Missing:   doc.Missing,
		Failures:  []failureDTO{},
		Truncated: doc.Truncated,
	}
	if resp.Missing == nil {
		resp.Missing = []string{}
	}
	for _, f := range doc.Failures {
		resp.Failures = append(resp.Failures, failureDTO{URL: f.URL, Reason: f.Reason})
	}
	return resp
}
