package huntleads

import (
	"context"
	"testing"
	"time"

	"lead-hunter/internal/common/config"
	"lead-hunter/internal/common/errors"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Hunt Runner
// ==========================

type MockHuntRunner struct {
	mock.Mock
}

func (m *MockHuntRunner) Run(ctx context.Context, query models.SearchQuery) (*models.HuntSummary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HuntSummary), args.Error(1)
}

func createValidConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
	}
}

func newTestHandler(t *testing.T, runner HuntRunner) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: createValidConfig(),
		Hunts:        runner,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr string
	}{
		{
			name: "valid configuration",
			opts: HandlerOptions{CustomConfig: createValidConfig(), Hunts: new(MockHuntRunner)},
		},
		{
			name:    "missing runner",
			opts:    HandlerOptions{CustomConfig: createValidConfig()},
			wantErr: "hunt runner is required",
		},
		{
			name: "invalid timeout",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 1, Timeout: 0},
				Hunts:        new(MockHuntRunner),
			},
			wantErr: "timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskType, h.GetTaskType())
			assert.True(t, h.IsEnabled())
		})
	}
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	app := &config.Config{
		Hunter: config.HunterConfig{HuntTimeoutMs: 90000},
		Workers: map[string]config.WorkerConfig{
			config.HuntWorkerName: {Enabled: false, MaxJobsActive: 2},
		},
	}

	cfg := createConfigFromAppConfig(app, nil)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, 90*time.Second, cfg.Timeout)

	assert.Equal(t, DefaultConfig(), createConfigFromAppConfig(nil, nil))
}

func TestHandler_Register_Disabled(t *testing.T) {
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: false, MaxJobsActive: 1, Timeout: time.Second},
		Hunts:        new(MockHuntRunner),
	})
	require.NoError(t, err)
	assert.NoError(t, h.Register())

	h.config.Enabled = true
	assert.Error(t, h.Register(), "no camunda client")
}

// ==========================
// Input Tests
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables map[string]interface{}
		want      *Input
		wantErr   string
	}{
		{
			name: "valid",
			variables: map[string]interface{}{
				"query": "شقة", "city": "القاهرة", "requesterId": "user-1", "otherVar": true,
			},
			want: &Input{Query: "شقة", City: "القاهرة", RequesterID: "user-1"},
		},
		{
			name:      "missing city",
			variables: map[string]interface{}{"query": "شقة", "requesterId": "user-1"},
			wantErr:   "city",
		},
		{
			name:      "blank query",
			variables: map[string]interface{}{"query": "   ", "city": "x", "requesterId": "user-1"},
			wantErr:   "query",
		},
		{
			name:      "wrong type",
			variables: map[string]interface{}{"query": 12, "city": "x", "requesterId": "user-1"},
			wantErr:   "query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := parseInput(tt.variables)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInputValidationFailed, errors.CodeOf(err))
				stdErr, _ := errors.As(err)
				assert.Contains(t, stdErr.Details, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, input)
		})
	}
}

// ==========================
// Execute Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	runner := new(MockHuntRunner)
	h := newTestHandler(t, runner)

	summary := &models.HuntSummary{
		HuntID:     "h-1",
		Success:    true,
		Query:      "شقة",
		City:       "القاهرة",
		FoundLeads: 1,
		Leads:      []string{"01098765432"},
	}
	runner.On("Run", mock.Anything, models.SearchQuery{
		Term: "شقة", Location: "القاهرة", RequestedBy: "user-1",
	}).Return(summary, nil)

	got, err := h.Execute(context.Background(), &Input{Query: " شقة ", City: "القاهرة", RequesterID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, summary, got)

	vars := got.ToVariables()
	assert.Equal(t, true, vars["success"])
	assert.Equal(t, []string{"01098765432"}, vars["leads"])
	runner.AssertExpectations(t)
}

func TestHandler_Execute_HuntFailure(t *testing.T) {
	runner := new(MockHuntRunner)
	h := newTestHandler(t, runner)

	runner.On("Run", mock.Anything, mock.Anything).Return(&models.HuntSummary{
		HuntID:    "h-2",
		ErrorCode: string(errors.ErrCodeHuntQuotaExceeded),
		Error:     "search quota exceeded, try again later",
		Leads:     []string{},
	}, nil)

	summary, err := h.Execute(context.Background(), &Input{Query: "شقة", City: "x", RequesterID: "u"})
	require.Error(t, err)
	require.NotNil(t, summary)

	stdErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeHuntQuotaExceeded, stdErr.Code)
	assert.Equal(t, "h-2", stdErr.Metadata["huntId"])

	bpmn := errors.ConvertToBPMNError(stdErr)
	assert.Equal(t, "HUNT_QUOTA_EXCEEDED", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries, "hunt failures are thrown, never retried")
}

func TestHandler_Execute_NoSlot(t *testing.T) {
	runner := new(MockHuntRunner)
	h := newTestHandler(t, runner)

	runner.On("Run", mock.Anything, mock.Anything).
		Return(nil, errors.NewHuntCancelledError(context.DeadlineExceeded))

	summary, err := h.Execute(context.Background(), &Input{Query: "a", City: "b", RequesterID: "c"})
	assert.Nil(t, summary)
	assert.Equal(t, errors.ErrCodeHuntCancelled, errors.CodeOf(err))
}
