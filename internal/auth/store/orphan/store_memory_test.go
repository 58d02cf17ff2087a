package orphan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"idgate/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestRecordAndList() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.store.Record(ctx, Record{ProfileID: "p-2", Email: "b@x.com", RecordedAt: now}))
	s.Require().NoError(s.store.Record(ctx, Record{ProfileID: "p-1", Email: "a@x.com", RecordedAt: now.Add(-time.Minute)}))

	got, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("p-1", got[0].ProfileID)
	s.Equal("p-2", got[1].ProfileID)
}

func (s *InMemoryStoreSuite) TestRecordIsUpsert() {
	ctx := context.Background()

	s.Require().NoError(s.store.Record(ctx, Record{ProfileID: "p-1", Reason: "first"}))
	s.Require().NoError(s.store.Record(ctx, Record{ProfileID: "p-1", Reason: "second"}))

	got, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("second", got[0].Reason)
}

func (s *InMemoryStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Record(ctx, Record{ProfileID: "p-1"}))

	s.Require().NoError(s.store.Delete(ctx, "p-1"))
	s.ErrorIs(s.store.Delete(ctx, "p-1"), sentinel.ErrNotFound)
}
