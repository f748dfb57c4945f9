package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordHunt(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewWithRegisterer("lead-hunter-test", reg)
	require.NoError(t, err)
	defer func() { _ = o.Shutdown(context.Background()) }()

	o.RecordHunt(context.Background(), "ok", 120*time.Millisecond, 3)
	o.RecordHunt(context.Background(), "HUNT_QUOTA_EXCEEDED", 10*time.Millisecond, 0)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.True(t, hasFamily(names, "hunts", "processed"), "have %v", names)
	assert.True(t, hasFamily(names, "leads", "created"), "have %v", names)
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	o.RecordHunt(context.Background(), "ok", time.Second, 1)
	assert.NoError(t, o.Shutdown(context.Background()))
}

func hasFamily(names []string, parts ...string) bool {
	for _, n := range names {
		ok := true
		for _, p := range parts {
			if !strings.Contains(n, p) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
