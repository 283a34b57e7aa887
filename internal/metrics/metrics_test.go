package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStatement(t *testing.T) {
	before := testutil.ToFloat64(statementsTotal.WithLabelValues("find-fiction", "ok"))
	beforeErr := testutil.ToFloat64(statementsTotal.WithLabelValues("find-fiction", "error"))

	ObserveStatement("find-fiction", 3*time.Millisecond, nil)
	ObserveStatement("find-fiction", time.Millisecond, errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(statementsTotal.WithLabelValues("find-fiction", "ok")))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(statementsTotal.WithLabelValues("find-fiction", "error")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/books", "200"))
	ObserveRequest("/books", 200)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/books", "200")))
}
