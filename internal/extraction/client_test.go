package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
)

// MockProvider mocks the Provider interface
type MockProvider struct {
	mock.Mock
	engine string
}

func (m *MockProvider) Engine() string { return m.engine }

func (m *MockProvider) CheckConfig() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestClient_Generate(t *testing.T) {
	provider := &MockProvider{engine: EngineGemini}
	req := Request{Engine: EngineGemini, Model: "gemini-flash-latest", Prompt: "p"}

	provider.On("CheckConfig").Return(nil)
	provider.On("Generate", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return hasDeadline
	}), req).Return(`{"ok":true}`, nil)

	client := NewClient(time.Second, zap.NewNop(), provider)
	reply, err := client.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, reply)
	provider.AssertExpectations(t)
}

func TestClient_Generate_MissingCredential(t *testing.T) {
	provider := &MockProvider{engine: EngineGPT}
	provider.On("CheckConfig").Return(&entity.ConfigurationError{Provider: EngineGPT, Setting: "OPENAI_API_KEY"})

	client := NewClient(0, zap.NewNop(), provider)
	_, err := client.Generate(context.Background(), Request{Engine: EngineGPT})

	var cfgErr *entity.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "OPENAI_API_KEY", cfgErr.Setting)
	provider.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestClient_Generate_UnregisteredEngine(t *testing.T) {
	client := NewClient(0, zap.NewNop())

	_, err := client.Generate(context.Background(), Request{Engine: EngineGPT})
	var cfgErr *entity.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = client.Generate(context.Background(), Request{Engine: "llama"})
	assert.True(t, errors.Is(err, entity.ErrUnknownEngine))
}

func TestClient_Generate_WrapsProviderError(t *testing.T) {
	cause := errors.New("503 service unavailable")
	provider := &MockProvider{engine: EngineGemini}
	provider.On("CheckConfig").Return(nil)
	provider.On("Generate", mock.Anything, mock.Anything).Return("", cause).Once()

	client := NewClient(0, zap.NewNop(), provider)
	_, err := client.Generate(context.Background(), Request{Engine: EngineGemini})

	var providerErr *entity.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, EngineGemini, providerErr.Provider)
	assert.ErrorIs(t, err, cause)
	provider.AssertNumberOfCalls(t, "Generate", 1)
}

func TestClient_Generate_Timeout(t *testing.T) {
	provider := &MockProvider{engine: EngineGemini}
	provider.On("CheckConfig").Return(nil)
	provider.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)

	client := NewClient(10*time.Millisecond, zap.NewNop(), provider)
	_, err := client.Generate(context.Background(), Request{Engine: EngineGemini})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Ping(t *testing.T) {
	provider := &MockProvider{engine: EngineGPT}
	provider.On("CheckConfig").Return(nil)
	provider.On("Generate", mock.Anything, mock.MatchedBy(func(req Request) bool {
		return req.Model == "gpt-4o-mini" && req.JSONMode
	})).Return(`{"ok": true}`, nil)

	client := NewClient(0, zap.NewNop(), provider)
	reply, err := client.Ping(context.Background(), "gpt", "")

	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, reply)
}

func TestClient_CheckEngine(t *testing.T) {
	ready := &MockProvider{engine: EngineGemini}
	ready.On("CheckConfig").Return(nil)
	missing := &MockProvider{engine: EngineGPT}
	missing.On("CheckConfig").Return(&entity.ConfigurationError{Provider: EngineGPT, Setting: "OPENAI_API_KEY"})

	client := NewClient(0, zap.NewNop(), ready, missing)

	assert.NoError(t, client.CheckEngine(EngineGemini))

	var cfgErr *entity.ConfigurationError
	assert.ErrorAs(t, client.CheckEngine(EngineGPT), &cfgErr)
	assert.ErrorIs(t, client.CheckEngine("claude"), entity.ErrUnknownEngine)

	ready.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
