package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"ballot/internal/docstore"
	"ballot/pkg/platform/sentinel"
)

type DocstoreAllocatorSuite struct {
	suite.Suite
	store     *docstore.MemoryStore
	allocator *DocstoreAllocator
}

func TestDocstoreAllocatorSuite(t *testing.T) {
	suite.Run(t, new(DocstoreAllocatorSuite))
}

func (s *DocstoreAllocatorSuite) SetupTest() {
	s.store = docstore.NewMemory()
	s.allocator = NewDocstore(s.store, "extras")
	s.Require().NoError(s.allocator.Seed(context.Background()))
}

func (s *DocstoreAllocatorSuite) TestNext() {
	ctx := context.Background()

	s.Run("values are consecutive from a fresh counter", func() {
		first, err := s.allocator.Next(ctx, FieldEvent)
		s.Require().NoError(err)
		s.Equal(int64(1), first)

		second, err := s.allocator.Next(ctx, FieldEvent)
		s.Require().NoError(err)
		s.Equal(int64(2), second)
	})

	s.Run("event and notification counters advance independently", func() {
		n, err := s.allocator.Next(ctx, FieldNotification)
		s.Require().NoError(err)
		s.Equal(int64(1), n)
	})

	s.Run("missing field fails instead of starting at zero", func() {
		_, err := s.allocator.Next(ctx, "curBogus")
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("missing counter document fails the allocation", func() {
		bare := NewDocstore(docstore.NewMemory(), "extras")
		_, err := bare.Next(ctx, FieldEvent)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentUniqueness drives N concurrent allocations against a fresh
// counter and requires exactly N distinct, consecutive values back.
func (s *DocstoreAllocatorSuite) TestConcurrentUniqueness() {
	ctx := context.Background()
	const n = 100

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := NextEventID(ctx, s.allocator)
			s.NoError(err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	got := make([]int64, 0, n)
	for id := range ids {
		got = append(got, id)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	s.Require().Len(got, n)
	for i, id := range got {
		s.Equal(int64(i+1), id, "ids must be gapless and duplicate-free")
	}
}

// TestSeedRefusesUnreadableDocument corrupts the counter document after IDs
// were issued and requires Seed to surface the read failure instead of
// replacing the document with zeroed counters, which would re-issue IDs.
func (s *DocstoreAllocatorSuite) TestSeedRefusesUnreadableDocument() {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.allocator.Next(ctx, FieldEvent)
		s.Require().NoError(err)
	}

	s.Require().NoError(s.store.Set(ctx, "extras", "uniqueIdentifierData", "not a counter map"))

	s.Require().Error(s.allocator.Seed(ctx))

	_, err := s.allocator.Next(ctx, FieldEvent)
	s.Require().Error(err, "a corrupt counter must never restart from one")
	s.Require().NotErrorIs(err, sentinel.ErrNotFound)
}

func (s *DocstoreAllocatorSuite) TestSeedPreservesExistingCounters() {
	ctx := context.Background()

	_, err := s.allocator.Next(ctx, FieldEvent)
	s.Require().NoError(err)
	_, err = s.allocator.Next(ctx, FieldEvent)
	s.Require().NoError(err)

	s.Require().NoError(s.allocator.Seed(ctx))

	next, err := s.allocator.Next(ctx, FieldEvent)
	s.Require().NoError(err)
	s.Equal(int64(3), next)
}
