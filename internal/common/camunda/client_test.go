package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-hunter/internal/common/config"
	apperrors "lead-hunter/internal/common/errors"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("transient then success", func(t *testing.T) {
		calls := 0
		res, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("rpc error: code = Unavailable")
			}
			return "ok", nil
		}, "complete-job")

		require.NoError(t, err)
		assert.Equal(t, "ok", res)
		assert.Equal(t, 3, calls)
	})

	t.Run("transient exhausted", func(t *testing.T) {
		calls := 0
		_, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
			calls++
			return nil, errors.New("connection refused")
		}, "complete-job")

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, apperrors.ErrCodeEngineUnavailable, apperrors.CodeOf(err))
	})

	t.Run("permanent is not retried", func(t *testing.T) {
		calls := 0
		_, err := executeWithRetry(context.Background(), fastRetry, func(context.Context) (interface{}, error) {
			calls++
			return nil, errors.New("job not found")
		}, "complete-job")

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(err))
	})
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 5000})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.UsePlaintextConnection)
}
