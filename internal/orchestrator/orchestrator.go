// Package orchestrator runs a QR scan end to end: session and profile
// resolution, parsing, per-item FX and risk evaluation, prompt assembly, the
// completion call with its computed fallback, and persistence.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/service"
	"github.com/Veraticus/qrpay/internal/session"
)

// Defaults for orchestrator options.
const (
	DefaultCompletionTimeout = 30 * time.Second
	DefaultWorkers           = 4
	historyTextLimit         = 120
)

// CompletionState records whether the last completion attempt succeeded.
type CompletionState int32

// Completion states.
const (
	StateNormal CompletionState = iota
	StateDegraded
)

func (s CompletionState) String() string {
	if s == StateDegraded {
		return "DEGRADED"
	}
	return "NORMAL"
}

// Deps are the collaborators an Orchestrator composes. History is optional.
type Deps struct {
	Parser    service.Parser
	Decoder   service.ImageDecoder
	FX        service.FXConverter
	Risk      service.RiskScorer
	Completer service.Completer
	Profiles  service.ProfileStore
	Sessions  service.SessionStore
	History   service.HistoryStore
	Logger    *slog.Logger
	Now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxTurns sets the conversation window kept before each new turn.
func WithMaxTurns(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTurns = n
		}
	}
}

// WithCompletionTimeout bounds each completion call.
func WithCompletionTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.completionTimeout = d
		}
	}
}

// WithWorkers sets how many items are evaluated concurrently.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// Orchestrator sequences a scan request through its collaborators.
type Orchestrator struct {
	parser            service.Parser
	decoder           service.ImageDecoder
	fx                service.FXConverter
	risk              service.RiskScorer
	completer         service.Completer
	profiles          service.ProfileStore
	sessions          service.SessionStore
	history           service.HistoryStore
	logger            *slog.Logger
	now               func() time.Time
	maxTurns          int
	workers           int
	completionTimeout time.Duration
	state             atomic.Int32
}

// New creates an Orchestrator.
func New(deps Deps, opts ...Option) (*Orchestrator, error) {
	switch {
	case deps.Parser == nil:
		return nil, fmt.Errorf("%w: parser", common.ErrMissingConfig)
	case deps.FX == nil:
		return nil, fmt.Errorf("%w: fx converter", common.ErrMissingConfig)
	case deps.Risk == nil:
		return nil, fmt.Errorf("%w: risk scorer", common.ErrMissingConfig)
	case deps.Completer == nil:
		return nil, fmt.Errorf("%w: completer", common.ErrMissingConfig)
	case deps.Profiles == nil:
		return nil, fmt.Errorf("%w: profile store", common.ErrMissingConfig)
	case deps.Sessions == nil:
		return nil, fmt.Errorf("%w: session store", common.ErrMissingConfig)
	}

	o := &Orchestrator{
		parser:            deps.Parser,
		decoder:           deps.Decoder,
		fx:                deps.FX,
		risk:              deps.Risk,
		completer:         deps.Completer,
		profiles:          deps.Profiles,
		sessions:          deps.Sessions,
		history:           deps.History,
		logger:            deps.Logger,
		now:               deps.Now,
		maxTurns:          session.DefaultMaxTurns,
		workers:           DefaultWorkers,
		completionTimeout: DefaultCompletionTimeout,
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// ScanRequest is a text scan.
type ScanRequest struct {
	UserID    string
	SessionID string
	Payload   string
}

// ImageScanRequest is an image scan. DisplayName labels the image in history
// and defaults to the file's base name.
type ImageScanRequest struct {
	UserID      string
	SessionID   string
	ImagePath   string
	DisplayName string
}

// scanInput is what both entry points hand to run.
type scanInput struct {
	userID    string
	sessionID string
	payload   string
	mode      string
	inputRepr string
	userTurn  string
	emptyMsg  string
}

// CompletionState reports the outcome of the most recent completion attempt.
func (o *Orchestrator) CompletionState() CompletionState {
	return CompletionState(o.state.Load())
}

// HandleTextScan processes a text payload. Empty or unparseable input is
// returned as a *common.UserError and leaves session state untouched.
func (o *Orchestrator) HandleTextScan(ctx context.Context, req ScanRequest) (*Result, error) {
	payload := strings.TrimSpace(req.Payload)
	return o.run(ctx, scanInput{
		userID:    req.UserID,
		sessionID: req.SessionID,
		payload:   payload,
		mode:      model.ModeText,
		inputRepr: common.Truncate(payload, historyTextLimit),
		userTurn:  "User scanned QR text: " + payload,
		emptyMsg:  noItemsMessage,
	})
}

// HandleImageScan decodes QR codes from an image and processes them through
// the same path as text input. An image without codes yields an empty result.
func (o *Orchestrator) HandleImageScan(ctx context.Context, req ImageScanRequest) (*Result, error) {
	if o.decoder == nil {
		return nil, fmt.Errorf("%w: image decoder", common.ErrMissingConfig)
	}
	if strings.TrimSpace(req.ImagePath) == "" {
		return nil, common.NewUserError("Please upload a QR image.", common.ErrEmptyInput)
	}

	decoded, err := o.decoder.DecodeFile(ctx, req.ImagePath)
	if err != nil {
		if errors.Is(err, common.ErrUnreadableImage) {
			return nil, common.NewUserError("The uploaded file is not a readable image.", err)
		}
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	name := req.DisplayName
	if name == "" {
		name = filepath.Base(req.ImagePath)
	}

	payload := NormalizeDecoded(decoded)
	o.logger.Debug("decoded image", "image", name, "codes", len(decoded), "payload", payload)

	return o.run(ctx, scanInput{
		userID:    req.UserID,
		sessionID: req.SessionID,
		payload:   payload,
		mode:      model.ModeImage,
		inputRepr: common.Truncate(fmt.Sprintf("image(%s)", name), historyTextLimit),
		userTurn:  fmt.Sprintf("User scanned QR image %s: %s", name, payload),
		emptyMsg:  noCodesMessage,
	})
}

func (o *Orchestrator) run(ctx context.Context, in scanInput) (*Result, error) {
	var (
		items    []model.TransactionRecord
		invalid  int
		multiple = true
	)

	if in.mode == model.ModeText || in.payload != "" {
		parsed, err := o.parser.Parse(in.payload)
		if err != nil {
			return nil, parseFailure(err)
		}
		items, invalid, multiple = fanOut(parsed)
	}

	sess, release, err := o.sessions.Resolve(ctx, in.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	defer release()

	profile := o.profiles.Ensure(ctx, in.userID)

	res := &Result{
		SessionID:    sess.ID,
		HomeCurrency: profile.HomeCurrency,
		InvalidCount: invalid,
		Multiple:     multiple,
	}

	sess.History = session.Compact(sess.History, o.maxTurns)
	sess.History = append(sess.History, model.Turn{Role: model.RoleUser, Content: in.userTurn})

	if len(items) == 0 {
		zero, count := 0.0, 0
		res.TotalHome = &zero
		res.Count = &count
		res.Message = in.emptyMsg
		sess.Status = model.SessionEmpty
		sess.Metadata[model.MetaLastQRSummary] = in.emptyMsg
	} else {
		o.fill(ctx, in.userID, profile, items, res)
		res.Message = o.respond(ctx, profile, sess.History, res)
		sess.Status = model.SessionScanned
		if res.Degraded {
			sess.Status = model.SessionDegraded
		}
		sess.Metadata[model.MetaLastQRSummary] = scanSummary(res)
	}

	sess.History = append(sess.History, model.Turn{Role: model.RoleAssistant, Content: res.Message})
	if err := o.sessions.Commit(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}

	o.appendHistory(ctx, in, res)

	o.logger.Info("scan processed",
		"session_id", res.SessionID,
		"user_id", in.userID,
		"mode", in.mode,
		"items", len(items),
		"invalid", invalid,
		"degraded", res.Degraded)

	return res, nil
}

// fill evaluates items and populates the singular or plural envelope fields.
func (o *Orchestrator) fill(ctx context.Context, userID string, profile model.UserProfile, items []model.TransactionRecord, res *Result) {
	results := o.evaluate(ctx, userID, profile.HomeCurrency, items)

	// Merchants are remembered only after every item is scored so that items
	// in one request never influence each other.
	for _, item := range items {
		o.profiles.RecordMerchant(ctx, userID, item.MerchantID)
	}

	if !res.Multiple {
		r := results[0]
		res.QRInfo = &r.QRInfo
		res.FXResult = &r.FXResult
		res.RiskResult = &r.RiskResult
		res.UserCountry = r.QRInfo.Country
		res.AnyHighRisk = r.RiskResult.Level.AtLeastHigh()
		return
	}

	agg := reduce(results)
	if len(agg.currencies) > 1 {
		o.logger.Warn("aggregate total spans several home currencies", "currencies", len(agg.currencies))
	}
	count := len(results)
	res.Items = results
	res.Count = &count
	res.TotalHome = &agg.total
	res.AnyHighRisk = agg.anyHigh
}

// respond returns the completion text, or the computed fallback when the
// completion fails for any reason.
func (o *Orchestrator) respond(ctx context.Context, profile model.UserProfile, history []model.Turn, res *Result) string {
	prompt, err := buildPrompt(profile, history, res)
	if err == nil {
		cctx, cancel := context.WithTimeout(ctx, o.completionTimeout)
		var text string
		text, err = o.completer.Complete(cctx, prompt)
		cancel()
		if err == nil && strings.TrimSpace(text) != "" {
			o.state.Store(int32(StateNormal))
			return text
		}
		if err == nil {
			err = errors.New("empty completion")
		}
	}

	o.state.Store(int32(StateDegraded))
	o.logger.Error("completion failed, using computed summary",
		"session_id", res.SessionID,
		"error", err)

	res.Degraded = true
	if res.Multiple {
		return MultiFallbackMessage(res.Items, *res.TotalHome, res.HomeCurrency, res.AnyHighRisk)
	}
	return FallbackMessage(*res.FXResult, *res.RiskResult)
}

func (o *Orchestrator) appendHistory(ctx context.Context, in scanInput, res *Result) {
	if o.history == nil {
		return
	}

	raw, err := json.Marshal(res)
	if err != nil {
		o.logger.Warn("failed to encode result for history", "error", err)
		return
	}

	rec := &model.HistoryRecord{
		CreatedAt:    o.now(),
		UserID:       in.userID,
		SessionID:    res.SessionID,
		Mode:         in.mode,
		InputRepr:    in.inputRepr,
		HomeCurrency: res.HomeCurrency,
		RiskLevel:    res.RiskLabel(),
		Note:         common.Truncate(res.Message, historyTextLimit),
		RawResult:    raw,
	}
	if total, ok := res.Total(); ok {
		rec.TotalHome = &total
	}

	if err := o.history.AppendHistory(ctx, rec); err != nil {
		o.logger.Warn("failed to append history", "session_id", res.SessionID, "error", err)
	}
}

func parseFailure(err error) error {
	switch {
	case errors.Is(err, common.ErrEmptyInput):
		return common.NewUserError("Please enter a QR payload string.", err)
	case errors.Is(err, common.ErrNoValidItems):
		return common.NewUserError(noItemsMessage, err)
	case errors.Is(err, common.ErrInvalidPayload):
		return common.NewUserError("Could not read that QR payload. Expected QR:<country>:<currency>:<amount>.", err)
	default:
		return fmt.Errorf("failed to parse payload: %w", err)
	}
}

func scanSummary(res *Result) string {
	total, _ := res.Total()
	if res.Multiple {
		return fmt.Sprintf("%d items, total %s %s", len(res.Items), common.FormatMoney(total), res.HomeCurrency)
	}
	return fmt.Sprintf("%s %s at %s -> %s %s (%s)",
		common.FormatMoney(res.QRInfo.Amount), res.QRInfo.Currency, res.QRInfo.MerchantID,
		common.FormatMoney(total), res.HomeCurrency, res.RiskResult.Level)
}
