// internal/capture/pipeline.go
package capture

import (
	"context"
	"net/url"
	"time"

	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/utils"
)

// Metrics receives capture outcome observations. The monitoring
// package provides the Prometheus-backed implementation; a nil Metrics
// disables observation.
type Metrics interface {
	CaptureStarted()
	CaptureFinished()
	ObserveCapture(format string, status int, elapsed time.Duration, imageBytes int)
}

// AuditEntry is the persisted record of one capture attempt, success
// or failure. Image bytes are never stored, only their size.
type AuditEntry struct {
	URL       string
	Format    string
	Selector  string
	Width     int
	Height    int
	FullPage  bool
	Mobile    bool
	Status    int
	Kind      string
	Bytes     int
	Elapsed   time.Duration
	CreatedAt time.Time
}

// Recorder persists audit entries. The history package provides the
// SQL-backed implementations; a nil Recorder disables auditing.
type Recorder interface {
	Record(ctx context.Context, e AuditEntry) error
}

// Pipeline executes the full capture flow for one request: validate,
// launch, configure, navigate, capture, teardown. Every acquired
// session is released exactly once on every path, and every failure
// leaves as a *ClassifiedError.
type Pipeline struct {
	cfg        *config.ServiceConfig
	sessions   SessionManager
	validator  *URLValidator
	classifier *Classifier
	navigator  *Navigator
	engine     *Engine
	configure  *Configurator
	metrics    Metrics
	recorder   Recorder
	log        utils.Logger
}

// PipelineConfig wires a pipeline's collaborators. Sessions is
// required; Metrics and Recorder are optional.
type PipelineConfig struct {
	Service  *config.ServiceConfig
	Sessions SessionManager
	Metrics  Metrics
	Recorder Recorder
	Logger   utils.Logger
}

// NewPipeline assembles a pipeline from service configuration.
func NewPipeline(pc PipelineConfig) *Pipeline {
	logger := pc.Logger
	if logger == nil {
		logger = utils.NewLogger()
	}

	hardened := pc.Service.Hardened()
	cc := pc.Service.Capture

	return &Pipeline{
		cfg:        pc.Service,
		sessions:   pc.Sessions,
		validator:  NewURLValidator(hardened),
		classifier: NewClassifier(hardened),
		navigator:  NewNavigator(cc.NavigationTimeout(), cc.FallbackTimeout(), logger),
		engine:     NewEngine(cc.SelectorTimeout(), logger),
		configure:  NewConfigurator(cc, pc.Service.Browser, logger),
		metrics:    pc.Metrics,
		recorder:   pc.Recorder,
		log:        logger,
	}
}

// Execute runs one capture end to end. On failure the returned error
// is always a *ClassifiedError carrying status, kind and elapsed time.
func (p *Pipeline) Execute(ctx context.Context, q url.Values) (*Result, error) {
	start := time.Now()

	if p.metrics != nil {
		p.metrics.CaptureStarted()
		defer p.metrics.CaptureFinished()
	}

	reqCtx, cancel := context.WithDeadline(ctx, start.Add(p.cfg.Capture.RequestTimeout()))
	defer cancel()

	req, err := ParseRequest(q, p.cfg.Capture, p.validator)
	if err != nil {
		return nil, p.fail(req, err, StageValidate, start)
	}

	sess, err := p.sessions.Acquire(reqCtx, req)
	if err != nil {
		return nil, p.fail(req, err, StageLaunch, start)
	}
	defer sess.Release()

	// No deadline here on purpose: the resource-blocking listener this
	// installs has to outlive the configure run. The session context is
	// already bounded by the request deadline.
	if err := sess.Run(context.Background(), p.configure.Tasks(req)); err != nil {
		p.log.WithField("url", req.URL).Warnf("page configuration incomplete: %v", err)
	}

	// Navigation and capture share one page budget measured from the
	// request's start, so a slow launch cannot extend the page phase.
	pageCtx, pageCancel := context.WithDeadline(reqCtx, start.Add(p.cfg.Capture.PageTimeout()))
	defer pageCancel()

	if err := p.navigator.Navigate(pageCtx, sess, req); err != nil {
		return nil, p.fail(req, err, StageNavigate, start)
	}

	result, err := p.engine.Capture(pageCtx, sess, req)
	if err != nil {
		return nil, p.fail(req, err, StageCapture, start)
	}

	if p.cfg.Capture.ExtractTitle {
		result.Title = PageTitle(pageCtx, sess, p.log)
	}

	result.Elapsed = time.Since(start)

	p.observe(req, result, nil)
	p.log.WithFields(map[string]interface{}{
		"url":     req.URL,
		"format":  string(result.Format),
		"bytes":   result.Size(),
		"elapsed": result.Elapsed.Round(time.Millisecond).String(),
	}).Info("capture completed")

	return result, nil
}

// fail classifies a raw error, stamps the elapsed time and records the
// outcome.
func (p *Pipeline) fail(req *Request, err error, stage Stage, start time.Time) *ClassifiedError {
	ce := p.classifier.Classify(err, stage)
	ce.Elapsed = time.Since(start)

	p.observe(req, nil, ce)
	p.log.WithFields(map[string]interface{}{
		"kind":    string(ce.Kind),
		"status":  ce.Status,
		"stage":   string(stage),
		"elapsed": ce.Elapsed.Round(time.Millisecond).String(),
	}).Warnf("capture failed: %v", err)

	return ce
}

// observe feeds metrics and the audit recorder. Recording failures are
// logged and swallowed: auditing never changes a response.
func (p *Pipeline) observe(req *Request, result *Result, ce *ClassifiedError) {
	entry := AuditEntry{CreatedAt: time.Now().UTC()}
	format := ""

	if req != nil {
		entry.URL = req.URL
		entry.Format = string(req.Format)
		entry.Selector = req.Selector
		entry.Width = req.Width
		entry.Height = req.Height
		entry.FullPage = req.FullPage
		entry.Mobile = req.Mobile
		format = string(req.Format)
	}

	if result != nil {
		entry.Status = 200
		entry.Bytes = result.Size()
		entry.Elapsed = result.Elapsed
		entry.Width = result.Width
		entry.Height = result.Height
	} else if ce != nil {
		entry.Status = ce.Status
		entry.Kind = string(ce.Kind)
		entry.Elapsed = ce.Elapsed
	}

	if p.metrics != nil {
		p.metrics.ObserveCapture(format, entry.Status, entry.Elapsed, entry.Bytes)
	}

	if p.recorder != nil {
		// The request context may already be expired when a timeout is
		// being recorded, so auditing gets its own short budget.
		recCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.recorder.Record(recCtx, entry); err != nil {
			p.log.Warnf("audit record failed: %v", err)
		}
	}
}
