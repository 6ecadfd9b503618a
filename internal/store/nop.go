package store

import (
	"context"

	"github.com/amishk599/jobpress/internal/model"
)

// NopStore is used when the archive is disabled. Saves are dropped and
// lookups find nothing.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Save(context.Context, *model.Document) error { return nil }
func (s *NopStore) Get(context.Context, string) (*model.Article, error) {
	return nil, model.ErrNotFound
}
func (s *NopStore) List(context.Context, int) ([]*model.Article, error) { return nil, nil }
