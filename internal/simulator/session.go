// Package simulator implements the single-session ATM engine.
//
// FILE: session.go
// PURPOSE: Engine authenticates one account at a time and applies the ATM
// operations to it. Every balance rule lives here. The engine is synchronous
// and not safe for concurrent use; callers serialize access.
//
// KEY FUNCTIONS:
// - Login / Logout: session lifecycle
// - Withdraw / Deposit: balance mutations with validation
// - CheckBalance / CalculateInterest: read-only inquiries
//
// RELATED FILES:
// - store.go: account ownership
// - history.go: bounded transaction history
// - audit.go: optional journal the engine reports to
package simulator

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/willfong/atmsim/internal/config"
	"github.com/willfong/atmsim/internal/models"
	"github.com/willfong/atmsim/internal/utils"
)

// AuditRecorder receives engine events. Write must not block.
type AuditRecorder interface {
	Write(log *models.AuditLog)
}

type nopRecorder struct{}

func (nopRecorder) Write(*models.AuditLog) {}

// Options configures an Engine. Zero fields take the package defaults.
type Options struct {
	WithdrawalLimit float64
	InterestRate    float64
	HistorySize     int

	Now          func() time.Time
	NewSessionID func() string
	Logger       *slog.Logger
	Audit        AuditRecorder
	Metrics      *Metrics
}

// OptionsFromConfig builds engine options from the limits section
func OptionsFromConfig(cfg config.LimitsConfig) Options {
	return Options{
		WithdrawalLimit: cfg.WithdrawalLimit,
		InterestRate:    cfg.InterestRate,
		HistorySize:     cfg.HistorySize,
	}
}

// InterestReport is the outcome of CalculateInterest
type InterestReport struct {
	// Applicable is false for non-savings accounts; Notice then explains why
	Applicable bool
	Notice     error

	Balance          float64
	MonthlyInterest  float64
	ProjectedBalance float64
}

// Engine runs one ATM session at a time against an AccountStore
type Engine struct {
	store   *AccountStore
	history *TransactionLog

	active    AccountRef
	sessionID string

	withdrawalLimit float64
	interestRate    float64

	now          func() time.Time
	newSessionID func() string
	log          *slog.Logger
	audit        AuditRecorder
	metrics      *Metrics
}

// NewEngine creates a logged-out engine over store
func NewEngine(store *AccountStore, opts Options) *Engine {
	if opts.WithdrawalLimit <= 0 {
		opts.WithdrawalLimit = config.WithdrawalLimit
	}
	if opts.InterestRate <= 0 {
		opts.InterestRate = config.SavingsInterestRate
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewSessionID == nil {
		opts.NewSessionID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Audit == nil {
		opts.Audit = nopRecorder{}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	return &Engine{
		store:           store,
		history:         NewTransactionLog(opts.HistorySize),
		active:          noAccount,
		withdrawalLimit: opts.WithdrawalLimit,
		interestRate:    opts.InterestRate,
		now:             opts.Now,
		newSessionID:    opts.NewSessionID,
		log:             opts.Logger,
		audit:           opts.Audit,
		metrics:         opts.Metrics,
	}
}

// Login authenticates id with pin and starts a fresh session.
// On failure the current state, including any active session, is untouched.
func (e *Engine) Login(id, pin string) error {
	if id == "" || pin == "" {
		e.reject(OpLogin, id, ErrEmptyCredential)
		e.record(&models.AuditLog{
			AccountID:     id,
			Action:        models.AuditLoginFailed,
			Outcome:       models.OutcomeFailure,
			FailureReason: ErrEmptyCredential.Error(),
		})
		return ErrEmptyCredential
	}

	ref, ok := e.store.Lookup(id)
	if !ok || !e.store.account(ref).CheckPIN(pin) {
		e.reject(OpLogin, id, ErrInvalidCredentials)
		e.record(&models.AuditLog{
			AccountID:     id,
			Action:        models.AuditLoginFailed,
			Outcome:       models.OutcomeFailure,
			FailureReason: ErrInvalidCredentials.Error(),
		})
		return ErrInvalidCredentials
	}

	e.active = ref
	e.sessionID = e.newSessionID()
	e.history.Clear()
	e.history.Append(models.DescLogin, e.now())

	e.metrics.RecordSession()
	e.metrics.RecordOperation(OpLogin)
	e.log.Debug("login", "account", id, "session", e.sessionID)
	e.record(&models.AuditLog{
		Action:      models.AuditLoginSuccess,
		Outcome:     models.OutcomeSuccess,
		Description: models.DescLogin,
	})
	return nil
}

// Logout ends the session and clears the history. Calling it while logged
// out does nothing.
func (e *Engine) Logout() {
	if e.active != noAccount {
		e.metrics.RecordOperation(OpLogout)
		e.log.Debug("logout", "account", e.store.account(e.active).ID, "session", e.sessionID)
		e.record(&models.AuditLog{
			Action:  models.AuditLogout,
			Outcome: models.OutcomeSuccess,
		})
	}
	e.active = noAccount
	e.sessionID = ""
	e.history.Clear()
}

// Withdraw parses input as an amount and removes it from the balance.
// Checks run in order: parse, positive, withdrawal limit, funds.
func (e *Engine) Withdraw(input string) (float64, error) {
	acc, err := e.current(OpWithdrawal)
	if err != nil {
		return 0, err
	}

	amount, err := ParseAmount(input)
	if err == nil {
		err = e.checkWithdrawal(acc, amount)
	}
	if err != nil {
		e.decline(OpWithdrawal, acc, amount, err)
		return acc.Balance, err
	}

	acc.Balance -= amount
	e.complete(OpWithdrawal, acc, amount, models.DescWithdrawPrefix+utils.FormatAmount(amount, ""))
	return acc.Balance, nil
}

func (e *Engine) checkWithdrawal(acc *models.Account, amount float64) error {
	switch {
	case amount <= 0:
		return ErrNonPositiveAmount
	case amount > e.withdrawalLimit:
		return &limitError{limit: e.withdrawalLimit}
	case !acc.CanWithdraw(amount):
		return ErrInsufficientFunds
	}
	return nil
}

// Deposit parses input as an amount and adds it to the balance.
// There is no upper bound.
func (e *Engine) Deposit(input string) (float64, error) {
	acc, err := e.current(OpDeposit)
	if err != nil {
		return 0, err
	}

	amount, err := ParseAmount(input)
	if err == nil && amount <= 0 {
		err = ErrNonPositiveAmount
	}
	if err != nil {
		e.decline(OpDeposit, acc, amount, err)
		return acc.Balance, err
	}

	acc.Balance += amount
	e.complete(OpDeposit, acc, amount, models.DescDepositPrefix+utils.FormatAmount(amount, ""))
	return acc.Balance, nil
}

// CheckBalance returns the current balance and records the inquiry
func (e *Engine) CheckBalance() (float64, error) {
	acc, err := e.current(OpBalanceCheck)
	if err != nil {
		return 0, err
	}

	e.history.Append(models.DescBalanceChecked, e.now())
	e.metrics.RecordOperation(OpBalanceCheck)
	e.log.Debug("balance inquiry", "account", acc.ID, "balance", acc.Balance)
	e.record(&models.AuditLog{
		Action:       models.AuditBalanceInquiry,
		Outcome:      models.OutcomeSuccess,
		BalanceAfter: ptr(acc.Balance),
		Description:  models.DescBalanceChecked,
	})
	return acc.Balance, nil
}

// CalculateInterest projects one month of interest on a savings account.
// The projection is reported only; the stored balance does not change.
// Non-savings accounts get a report with Applicable false and no history entry.
func (e *Engine) CalculateInterest() (InterestReport, error) {
	acc, err := e.current(OpInterest)
	if err != nil {
		return InterestReport{}, err
	}

	if !acc.IsSavings() {
		e.metrics.RecordOperation(OpInterest)
		e.log.Debug("interest not applicable", "account", acc.ID, "kind", acc.Kind)
		e.record(&models.AuditLog{
			Action:        models.AuditInterestNotEligible,
			Outcome:       models.OutcomeDenied,
			BalanceAfter:  ptr(acc.Balance),
			FailureReason: ErrNotSavingsAccount.Error(),
		})
		return InterestReport{
			Applicable: false,
			Notice:     ErrNotSavingsAccount,
			Balance:    acc.Balance,
		}, nil
	}

	monthly := acc.Balance * e.interestRate / config.MonthsPerYear
	report := InterestReport{
		Applicable:       true,
		Balance:          acc.Balance,
		MonthlyInterest:  monthly,
		ProjectedBalance: acc.Balance + monthly,
	}

	e.history.Append(models.DescInterestCalculated, e.now())
	e.metrics.RecordOperation(OpInterest)
	e.log.Debug("interest calculated", "account", acc.ID, "monthly", monthly)
	e.record(&models.AuditLog{
		Action:       models.AuditInterestCalculated,
		Outcome:      models.OutcomeSuccess,
		Amount:       ptr(monthly),
		BalanceAfter: ptr(acc.Balance),
		Description:  models.DescInterestCalculated,
	})
	return report, nil
}

// Entries returns the session history newest first
func (e *Engine) Entries() []models.TransactionRecord {
	return e.history.Entries()
}

// Active returns a snapshot of the logged-in account
func (e *Engine) Active() (models.Account, bool) {
	if e.active == noAccount {
		return models.Account{}, false
	}
	return e.store.Get(e.active)
}

// LoggedIn reports whether a session is active
func (e *Engine) LoggedIn() bool {
	return e.active != noAccount
}

// SessionID returns the correlation id of the active session, or ""
func (e *Engine) SessionID() string {
	return e.sessionID
}

// WithdrawalLimit returns the per-operation withdrawal ceiling
func (e *Engine) WithdrawalLimit() float64 {
	return e.withdrawalLimit
}

// HistoryCapacity returns how many records a session keeps
func (e *Engine) HistoryCapacity() int {
	return e.history.Cap()
}

// Metrics returns the engine's counters
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// current returns the live active account or ErrNoActiveSession
func (e *Engine) current(op OperationType) (*models.Account, error) {
	acc := e.store.account(e.active)
	if acc == nil {
		e.reject(op, "", ErrNoActiveSession)
		e.record(&models.AuditLog{
			Action:        models.AuditSessionRequired,
			Outcome:       models.OutcomeDenied,
			Description:   string(op),
			FailureReason: ErrNoActiveSession.Error(),
		})
		return nil, ErrNoActiveSession
	}
	return acc, nil
}

func (e *Engine) complete(op OperationType, acc *models.Account, amount float64, desc string) {
	e.history.Append(desc, e.now())
	e.metrics.RecordOperation(op)
	e.log.Debug(string(op), "account", acc.ID, "amount", amount, "balance", acc.Balance)
	e.record(&models.AuditLog{
		Action:       models.AuditTransactionCompleted,
		Outcome:      models.OutcomeSuccess,
		Amount:       ptr(amount),
		BalanceAfter: ptr(acc.Balance),
		Description:  desc,
	})
}

func (e *Engine) decline(op OperationType, acc *models.Account, amount float64, err error) {
	e.reject(op, acc.ID, err)
	log := &models.AuditLog{
		Action:        models.AuditTransactionDeclined,
		Outcome:       models.OutcomeFailure,
		BalanceAfter:  ptr(acc.Balance),
		Description:   string(op),
		FailureReason: err.Error(),
	}
	// Unreadable input fails; a readable amount that breaks a rule is denied
	if IsBusinessRuleError(err) {
		log.Outcome = models.OutcomeDenied
	}
	if !IsValidationError(err) {
		log.Amount = ptr(amount)
	}
	e.record(log)
}

func (e *Engine) reject(op OperationType, account string, err error) {
	e.metrics.RecordError(ClassifyError(err))
	e.log.Info("operation rejected", "op", string(op), "account", account, "reason", err)
}

// record stamps and forwards an audit event for the current session
func (e *Engine) record(log *models.AuditLog) {
	log.Timestamp = e.now()
	log.SessionID = e.sessionID
	log.Channel = models.AuditChannelATM
	if log.AccountID == "" {
		if acc := e.store.account(e.active); acc != nil {
			log.AccountID = acc.ID
		}
	}
	e.audit.Write(log)
}

// limitError reports a withdrawal above the configured ceiling
type limitError struct {
	limit float64
}

func (e *limitError) Error() string {
	return ErrLimitExceeded.Error() + " of " + utils.FormatAmount(e.limit, "")
}

func (e *limitError) Unwrap() error {
	return ErrLimitExceeded
}

// ParseAmount reads a customer-entered amount. Surrounding whitespace is
// ignored; anything that is not a finite number is ErrInvalidAmount.
// Go digit separators such as "1_000" are rejected.
func ParseAmount(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if strings.ContainsRune(input, '_') {
		return 0, ErrInvalidAmount
	}
	amount, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

func ptr(v float64) *float64 {
	return &v
}
