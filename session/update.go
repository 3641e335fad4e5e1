package session

import (
	"context"

	"github.com/gosqlmapper/sqlmapper/configuration"
)

// Insert, Update, and Delete all dispatch to the executor's update path
// and mark the session dirty; the three are interchangeable with one
// another (so a soft-delete UPDATE may be invoked via Delete) but not
// with a SELECT/CALLABLE statement (§4.7).
func (s *Session) Insert(ctx context.Context, id string, param any) (int64, error) {
	return s.mutate(ctx, id, param)
}

func (s *Session) Update(ctx context.Context, id string, param any) (int64, error) {
	return s.mutate(ctx, id, param)
}

func (s *Session) Delete(ctx context.Context, id string, param any) (int64, error) {
	return s.mutate(ctx, id, param)
}

func (s *Session) mutate(ctx context.Context, id string, param any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	ms, err := s.resolveStatement(id, configuration.Insert, configuration.Update, configuration.Delete)
	if err != nil {
		return 0, err
	}
	n, err := s.exec.Update(ctx, ms, param)
	if err != nil {
		return 0, err
	}
	s.dirty = true
	return n, nil
}
