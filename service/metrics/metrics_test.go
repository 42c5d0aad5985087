package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordHit()
	m.RecordHit()
	m.RecordMiss()
	m.RecordCreated()
	m.RecordEviction()
	m.SetSize(3, 1)
	m.RecordAdvance("before", 2*time.Millisecond)
	m.RecordStep("ask")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreHitsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreEvictionsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StoreSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StorePinned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdvancesTotal.WithLabelValues("before")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsTotal.WithLabelValues("ask")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHit()
		m.RecordMiss()
		m.RecordCreated()
		m.RecordEviction()
		m.SetSize(1, 0)
		m.RecordAdvance("terminal", time.Millisecond)
		m.RecordStep("ask")
	})
}
