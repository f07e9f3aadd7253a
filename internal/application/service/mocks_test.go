package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
)

// MockOCR mocks port.OCREngine
type MockOCR struct {
	mock.Mock
}

func (m *MockOCR) Name() string { return "mock-ocr" }

func (m *MockOCR) Recognize(ctx context.Context, image []byte, language string) (entity.RecognizedText, error) {
	args := m.Called(ctx, image, language)
	return args.Get(0).(entity.RecognizedText), args.Error(1)
}

// MockEnhancer mocks port.ImageEnhancer
type MockEnhancer struct {
	mock.Mock
}

func (m *MockEnhancer) Enhance(ctx context.Context, data []byte) ([]byte, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockPDF mocks port.PDFTextExtractor
type MockPDF struct {
	mock.Mock
}

func (m *MockPDF) ExtractText(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

// MockTranscriber mocks port.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	args := m.Called(ctx, audio, mimeType)
	return args.String(0), args.Error(1)
}

// MockFetcher mocks port.DocumentFetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (*entity.RemoteDocument, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RemoteDocument), args.Error(1)
}

// MockExtractionClient mocks port.ExtractionClient
type MockExtractionClient struct {
	mock.Mock
}

func (m *MockExtractionClient) CheckEngine(engine string) error {
	args := m.Called(engine)
	return args.Error(0)
}

func (m *MockExtractionClient) Generate(ctx context.Context, req extraction.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// acquirerMocks bundles the collaborators of an Acquirer under test
type acquirerMocks struct {
	ocr         *MockOCR
	enhancer    *MockEnhancer
	pdf         *MockPDF
	transcriber *MockTranscriber
	fetcher     *MockFetcher
}

func (m *acquirerMocks) assertExpectations(t mock.TestingT) {
	m.ocr.AssertExpectations(t)
	m.enhancer.AssertExpectations(t)
	m.pdf.AssertExpectations(t)
	m.transcriber.AssertExpectations(t)
	m.fetcher.AssertExpectations(t)
}
