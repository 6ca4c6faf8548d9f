package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAIRequest(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{"success", nil, OutcomeSuccess},
		{"error", errors.New("boom"), OutcomeError},
		{"canceled", fmt.Errorf("send request: %w", context.Canceled), OutcomeCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := AIRequestsTotal.WithLabelValues("recommend", "test", tt.outcome)
			before := testutil.ToFloat64(counter)

			RecordAIRequest("recommend", "test", 20*time.Millisecond, tt.err)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordPosterCache(t *testing.T) {
	hits := testutil.ToFloat64(PosterCacheTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(PosterCacheTotal.WithLabelValues("miss"))

	RecordPosterCache(true)
	RecordPosterCache(false)
	RecordPosterCache(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(PosterCacheTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(PosterCacheTotal.WithLabelValues("miss")))
}

func TestRecordCatalogReload(t *testing.T) {
	failures := testutil.ToFloat64(CatalogReloadsTotal.WithLabelValues(OutcomeError))

	RecordCatalogReload(16, nil)
	assert.Equal(t, float64(16), testutil.ToFloat64(CatalogMovies))

	RecordCatalogReload(16, errors.New("bad yaml"))
	assert.Equal(t, failures+1, testutil.ToFloat64(CatalogReloadsTotal.WithLabelValues(OutcomeError)))
}
