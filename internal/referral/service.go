package referral

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kPratik07/Bank-referral-system/internal/account"
	"github.com/kPratik07/Bank-referral-system/internal/store"
)

// Creation modes, used for logging and metrics labels.
const (
	ModeSingle = "single"
	ModeBulk   = "bulk"
)

// Ledger is everything the Service needs from storage.
// Implemented by *store.Store and *store.Handle.
type Ledger interface {
	store.Statements
	ListAccounts(ctx context.Context) ([]account.Account, error)
	InTx(ctx context.Context, fn func(store.Statements) error) error
}

// Recorder receives creation outcomes. Implemented by metrics.Collector.
type Recorder interface {
	AccountCreated(mode string, rule string)
	CreationFailed(mode string, kind string)
}

type nopRecorder struct{}

func (nopRecorder) AccountCreated(string, string) {}
func (nopRecorder) CreationFailed(string, string) {}

// Service creates and lists accounts.
//
// Thread-safety: Service holds no mutable state; it is safe for concurrent
// use. Consistency between concurrent single-item creations is NOT
// guaranteed (see package docs).
type Service struct {
	ledger   Ledger
	logger   *slog.Logger
	recorder Recorder
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger. Default: discard.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder. Default: no-op.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a Service on top of ledger.
func NewService(ledger Ledger, opts ...ServiceOption) *Service {
	s := &Service{
		ledger:   ledger,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount validates raw and creates one account.
//
// The pipeline steps run as separate statements with no surrounding
// transaction. If a later step fails, the provisional row stays behind.
func (s *Service) CreateAccount(ctx context.Context, raw account.RawItem) (account.Account, error) {
	item, err := account.ParseItem(raw)
	if err != nil {
		return account.Account{}, s.fail(ModeSingle, newValidationError(NoIndex, err))
	}

	c, err := runPipeline(ctx, s.ledger, item)
	if err != nil {
		return account.Account{}, s.fail(ModeSingle, classify(NoIndex, item, err))
	}

	s.created(ModeSingle, c)
	return c.result(), nil
}

// CreateAccountsBulk creates every item in one transaction, in order.
// Either all items are persisted with their beneficiaries or none are.
// The returned slice pairs one-to-one with raws.
func (s *Service) CreateAccountsBulk(ctx context.Context, raws []account.RawItem) ([]account.Account, error) {
	if len(raws) == 0 {
		return nil, s.fail(ModeBulk, newValidationError(NoIndex, errors.New("at least one account is required")))
	}

	var done []*creation
	err := s.ledger.InTx(ctx, func(tx store.Statements) error {
		done = make([]*creation, 0, len(raws))
		for i, raw := range raws {
			item, err := account.ParseItem(raw)
			if err != nil {
				return newValidationError(i, err)
			}

			c, err := runPipeline(ctx, tx, item)
			if err != nil {
				return classify(i, item, err)
			}
			done = append(done, c)
		}
		return nil
	})
	if err != nil {
		var re *Error
		if !errors.As(err, &re) {
			// begin or commit failed
			re = newStorageError(NoIndex, err)
		}
		return nil, s.fail(ModeBulk, re)
	}

	results := make([]account.Account, len(done))
	for i, c := range done {
		s.created(ModeBulk, c)
		results[i] = c.result()
	}
	s.logger.Info("bulk creation committed", "accounts", len(results))
	return results, nil
}

// ListAccounts returns the whole ledger ordered by id.
func (s *Service) ListAccounts(ctx context.Context) ([]account.Account, error) {
	accounts, err := s.ledger.ListAccounts(ctx)
	if err != nil {
		re := newStorageError(NoIndex, err)
		s.logger.Error("list accounts failed", "error", err)
		return nil, re
	}
	return accounts, nil
}

func (s *Service) created(mode string, c *creation) {
	s.recorder.AccountCreated(mode, string(c.assignment.Rule))
	s.logger.Debug("account created",
		"mode", mode,
		"id", c.item.AccountID,
		"introducer_id", c.item.IntroducerID,
		"beneficiary_id", account.Ptr(c.assignment.Beneficiary),
		"rule", c.assignment.Rule,
		"referral_count", c.assignment.Count,
	)
}

func (s *Service) fail(mode string, re *Error) *Error {
	s.recorder.CreationFailed(mode, string(re.Kind))
	switch re.Kind {
	case KindStorage:
		s.logger.Error("account creation failed", "mode", mode, "index", re.Index, "error", re.Err)
	default:
		s.logger.Debug("account creation rejected", "mode", mode, "index", re.Index, "kind", re.Kind, "error", re.Message)
	}
	return re
}

// classify maps a pipeline error to an *Error.
func classify(index int, item account.Item, err error) *Error {
	if errors.Is(err, store.ErrDuplicateID) {
		return newConflictError(index, item.AccountID, err)
	}
	return newStorageError(index, fmt.Errorf("account %d: %w", item.AccountID, err))
}
