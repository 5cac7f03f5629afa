package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()

	r.LinkCreated("sqlite")
	r.LinkCreated("sqlite")
	r.LinkReused("sqlite")
	r.LinkCreated("badger")
	r.Enumerated(5, 2*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.linksCreated.WithLabelValues("sqlite")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.linksCreated.WithLabelValues("badger")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.linksReused.WithLabelValues("sqlite")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.variants))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.LinkCreated("sqlite")
	r.LinkReused("sqlite")
	r.Enumerated(1, time.Second)
	require.NoError(t, r.WriteText(&bytes.Buffer{}))
}

func TestRecorder_WriteText(t *testing.T) {
	r := NewRecorder()
	r.LinkCreated("sqlite")

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), `doublets_links_created_total{backend="sqlite"} 1`)
}
