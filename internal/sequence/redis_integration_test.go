//go:build integration

package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"ballot/internal/sequence"
	"ballot/pkg/platform/sentinel"
	"ballot/pkg/testutil/containers"
)

type RedisAllocatorSuite struct {
	suite.Suite
	redis     *containers.RedisContainer
	allocator *sequence.RedisAllocator
}

func TestRedisAllocatorSuite(t *testing.T) {
	suite.Run(t, new(RedisAllocatorSuite))
}

func (s *RedisAllocatorSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.allocator = sequence.NewRedis(s.redis.Client)
}

func (s *RedisAllocatorSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisAllocatorSuite) TestUnseededCounterFails() {
	_, err := s.allocator.Next(context.Background(), sequence.FieldEvent)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *RedisAllocatorSuite) TestConsecutiveValues() {
	ctx := context.Background()
	s.Require().NoError(s.allocator.Seed(ctx))

	first, err := s.allocator.Next(ctx, sequence.FieldEvent)
	s.Require().NoError(err)
	second, err := s.allocator.Next(ctx, sequence.FieldEvent)
	s.Require().NoError(err)
	s.Equal(first+1, second)

	s.Run("fields advance independently", func() {
		n, err := s.allocator.Next(ctx, sequence.FieldNotification)
		s.Require().NoError(err)
		s.Equal(int64(1), n)
	})
}

func (s *RedisAllocatorSuite) TestSeedPreservesExistingCounters() {
	ctx := context.Background()
	s.Require().NoError(s.allocator.Seed(ctx))

	for i := 0; i < 3; i++ {
		_, err := s.allocator.Next(ctx, sequence.FieldEvent)
		s.Require().NoError(err)
	}

	s.Require().NoError(s.allocator.Seed(ctx))
	n, err := s.allocator.Next(ctx, sequence.FieldEvent)
	s.Require().NoError(err)
	s.Equal(int64(4), n)
}

// TestConcurrentUniqueness allocates from many goroutines; INCR must hand out
// every value exactly once with no gaps.
func (s *RedisAllocatorSuite) TestConcurrentUniqueness() {
	ctx := context.Background()
	s.Require().NoError(s.allocator.Seed(ctx))

	const allocations = 100
	var wg sync.WaitGroup
	values := make(chan int64, allocations)
	for i := 0; i < allocations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.allocator.Next(ctx, sequence.FieldEvent)
			s.NoError(err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, allocations)
	for v := range values {
		s.False(seen[v], "value %d allocated twice", v)
		seen[v] = true
	}
	for v := int64(1); v <= allocations; v++ {
		s.True(seen[v], "value %d missing from sequence", v)
	}
}
