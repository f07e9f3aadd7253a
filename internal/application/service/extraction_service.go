package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/vat-invoice-ocr/internal/application/port"
	"github.com/garyjia/vat-invoice-ocr/internal/domain/entity"
	"github.com/garyjia/vat-invoice-ocr/internal/domain/workflow"
	"github.com/garyjia/vat-invoice-ocr/internal/extraction"
	"github.com/garyjia/vat-invoice-ocr/pkg/utils"
)

// LowConfidence is the acquisition confidence at or below which a digital
// signature read from the text is discarded
const LowConfidence = 0.2

const outcomeFailed = "failed"

// Options selects the engine and model for one request. Empty values pick
// the defaults.
type Options struct {
	Engine string
	Model  string
}

// ExtractionService runs file, text, voice and URL requests through
// acquisition, the extraction model and normalization.
type ExtractionService struct {
	acquirer    *Acquirer
	builder     port.RequestBuilder
	client      port.ExtractionClient
	normalizer  port.InvoiceNormalizer
	metrics     port.MetricsRecorder
	logger      *zap.Logger
	machineOpts []workflow.BuilderOption
}

// NewExtractionService creates an ExtractionService. machineOpts are passed
// to every request state machine.
func NewExtractionService(
	acquirer *Acquirer,
	builder port.RequestBuilder,
	client port.ExtractionClient,
	normalizer port.InvoiceNormalizer,
	metrics port.MetricsRecorder,
	logger *zap.Logger,
	machineOpts ...workflow.BuilderOption,
) *ExtractionService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ExtractionService{
		acquirer:    acquirer,
		builder:     builder,
		client:      client,
		normalizer:  normalizer,
		metrics:     metrics,
		logger:      logger,
		machineOpts: machineOpts,
	}
}

// ProcessFile extracts an invoice from an uploaded image or PDF
func (s *ExtractionService) ProcessFile(ctx context.Context, data []byte, contentType string, opts Options) (*entity.ExtractionResult, error) {
	return s.process(ctx, entity.SourceFile, opts, func(ctx context.Context) (*entity.Acquired, error) {
		return s.acquirer.AcquireFile(ctx, data, contentType)
	})
}

// ProcessText extracts an invoice from pasted text
func (s *ExtractionService) ProcessText(ctx context.Context, text string, opts Options) (*entity.ExtractionResult, error) {
	return s.process(ctx, entity.SourceText, opts, func(ctx context.Context) (*entity.Acquired, error) {
		return s.acquirer.AcquireText(ctx, text)
	})
}

// ProcessVoice extracts an invoice from a spoken description
func (s *ExtractionService) ProcessVoice(ctx context.Context, audio []byte, mimeType string, opts Options) (*entity.ExtractionResult, error) {
	return s.process(ctx, entity.SourceVoice, opts, func(ctx context.Context) (*entity.Acquired, error) {
		return s.acquirer.AcquireVoice(ctx, audio, mimeType)
	})
}

// ProcessURL extracts an invoice from a remote image or PDF
func (s *ExtractionService) ProcessURL(ctx context.Context, rawURL string, opts Options) (*entity.ExtractionResult, error) {
	return s.process(ctx, entity.SourceURL, opts, func(ctx context.Context) (*entity.Acquired, error) {
		return s.acquirer.AcquireURL(ctx, rawURL)
	})
}

type acquireFunc func(ctx context.Context) (*entity.Acquired, error)

// run carries the per-request state through process
type run struct {
	machine workflow.StateMachine
	source  string
	engine  string
	logger  *zap.Logger
}

func (s *ExtractionService) process(ctx context.Context, source string, opts Options, acquire acquireFunc) (*entity.ExtractionResult, error) {
	r := &run{
		machine: workflow.NewRequestMachine(s.machineOpts...),
		source:  source,
		engine:  opts.Engine,
		logger:  s.logger.With(zap.String("source", source)),
	}

	engine, err := extraction.ParseEngine(opts.Engine)
	if err != nil {
		return s.fail(r, err)
	}
	r.engine = engine
	r.logger = r.logger.With(zap.String("engine", engine))

	// credentials are checked before any OCR or speech-to-text call
	if err := s.client.CheckEngine(engine); err != nil {
		return s.fail(r, err)
	}

	if err := r.machine.Fire(workflow.TriggerAcquire); err != nil {
		return s.fail(r, err)
	}
	acquired, err := acquire(ctx)
	if err != nil {
		s.metrics.ObserveAcquisition(source, 0, err)
		return s.fail(r, err)
	}
	s.metrics.ObserveAcquisition(acquired.Source, acquired.Confidence, nil)
	r.logger.Info("Input acquired",
		zap.String("acquired_from", acquired.Source),
		zap.Int("text_length", len(acquired.Text)),
		zap.Float64("confidence", acquired.Confidence))

	if err := r.machine.Fire(workflow.TriggerExtract); err != nil {
		return s.fail(r, err)
	}
	req, err := s.builder.Build(engine, opts.Model, acquired.Text)
	if err != nil {
		return s.fail(r, err)
	}
	start := time.Now()
	reply, err := s.client.Generate(ctx, req)
	s.metrics.ObserveProviderCall(req.Engine, req.Model, time.Since(start), err)
	if err != nil {
		return s.fail(r, err)
	}

	if err := r.machine.Fire(workflow.TriggerNormalize); err != nil {
		return s.fail(r, err)
	}
	result := &entity.ExtractionResult{
		RawText:    acquired.Text,
		Confidence: acquired.Confidence,
		EngineUsed: req.Engine,
		ModelUsed:  req.Model,
	}

	doc, err := s.normalizer.Normalize(reply)
	var malformed *entity.MalformedExtractionOutput
	switch {
	case errors.As(err, &malformed):
		if err := r.machine.Fire(workflow.TriggerDegrade); err != nil {
			return s.fail(r, err)
		}
		result.Outcome = entity.OutcomeDegradedSuccess
		result.NormalizationError = malformed.Error()
		result.ModelReply = reply
		r.logger.Warn("Model reply could not be normalized", zap.Error(malformed))

	case err != nil:
		return s.fail(r, err)

	default:
		if acquired.Confidence <= LowConfidence {
			doc.DigitalSignature = nil
		}
		s.checkTaxCodes(r.logger, doc)
		if err := r.machine.Fire(workflow.TriggerSucceed); err != nil {
			return s.fail(r, err)
		}
		result.Document = doc
		result.Outcome = entity.OutcomeSuccess
	}

	elapsed := r.machine.Elapsed()
	result.ElapsedMS = elapsed.Milliseconds()
	s.metrics.ObserveRequest(source, engine, string(result.Outcome), elapsed)

	r.logger.Info("Extraction finished",
		zap.String("model", result.ModelUsed),
		zap.String("outcome", string(result.Outcome)),
		zap.Int64("elapsed_ms", result.ElapsedMS))

	return result, nil
}

func (s *ExtractionService) fail(r *run, err error) (*entity.ExtractionResult, error) {
	if fireErr := r.machine.Fire(workflow.TriggerFail); fireErr != nil {
		err = fmt.Errorf("%w (%v)", err, fireErr)
	}
	elapsed := r.machine.Elapsed()
	s.metrics.ObserveRequest(r.source, r.engine, outcomeFailed, elapsed)
	r.logger.Error("Extraction failed",
		zap.String("state", r.machine.State().String()),
		zap.Duration("elapsed", elapsed),
		zap.Error(err))
	return nil, err
}

// checkTaxCodes logs tax codes that do not look like an MST. The values
// are kept as read.
func (s *ExtractionService) checkTaxCodes(logger *zap.Logger, doc *entity.InvoiceDocument) {
	codes := map[string]*string{
		"seller": doc.SellerInfo.TaxCode,
		"buyer":  doc.BuyerInfo.TaxCode,
	}
	for party, code := range codes {
		if code == nil {
			continue
		}
		if err := utils.ValidateTaxCode(*code); err != nil {
			logger.Warn("Suspicious tax code", zap.String("party", party), zap.Error(err))
		}
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveRequest(string, string, string, time.Duration) {}
func (nopMetrics) ObserveProviderCall(string, string, time.Duration, error) {}
func (nopMetrics) ObserveAcquisition(string, float64, error) {}
