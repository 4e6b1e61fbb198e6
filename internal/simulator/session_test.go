package simulator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/willfong/atmsim/internal/config"
	"github.com/willfong/atmsim/internal/models"
)

// auditRecorder keeps every event the engine reports
type auditRecorder struct {
	logs []*models.AuditLog
}

func (r *auditRecorder) Write(log *models.AuditLog) {
	r.logs = append(r.logs, log)
}

func (r *auditRecorder) last() *models.AuditLog {
	if len(r.logs) == 0 {
		return nil
	}
	return r.logs[len(r.logs)-1]
}

// testClock advances one second per call so history order is observable
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestEngine(t *testing.T) (*Engine, *auditRecorder) {
	t.Helper()

	store, err := NewAccountStore(referenceAccounts())
	if err != nil {
		t.Fatalf("NewAccountStore: %v", err)
	}

	clock := &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	seq := 0
	rec := &auditRecorder{}
	engine := NewEngine(store, Options{
		Now: clock.Now,
		NewSessionID: func() string {
			seq++
			return fmt.Sprintf("session-%d", seq)
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Audit:  rec,
	})
	return engine, rec
}

func mustLogin(t *testing.T, e *Engine, id, pin string) {
	t.Helper()
	if err := e.Login(id, pin); err != nil {
		t.Fatalf("login %s: %v", id, err)
	}
}

func balanceOf(t *testing.T, e *Engine) float64 {
	t.Helper()
	acc, ok := e.Active()
	if !ok {
		t.Fatal("expected an active session")
	}
	return acc.Balance
}

func descriptions(entries []models.TransactionRecord) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Description
	}
	return out
}

func TestEngine_Defaults(t *testing.T) {
	store, _ := NewAccountStore(referenceAccounts())
	e := NewEngine(store, Options{})

	if e.WithdrawalLimit() != 50000 {
		t.Errorf("expected default limit 50000, got %v", e.WithdrawalLimit())
	}
	if e.HistoryCapacity() != 5 {
		t.Errorf("expected default history capacity 5, got %d", e.HistoryCapacity())
	}
	if e.LoggedIn() {
		t.Error("new engine should be logged out")
	}
	if e.Metrics() == nil {
		t.Error("expected metrics to be created")
	}
}

func TestEngine_LoginEveryAccount(t *testing.T) {
	for _, acc := range referenceAccounts() {
		t.Run(acc.ID, func(t *testing.T) {
			e, _ := newTestEngine(t)
			mustLogin(t, e, acc.ID, acc.PIN)

			active, ok := e.Active()
			if !ok || active.ID != acc.ID {
				t.Fatalf("expected %s active, got %+v", acc.ID, active)
			}
			entries := e.Entries()
			if len(entries) != 1 || entries[0].Description != models.DescLogin {
				t.Errorf("expected exactly one Login entry, got %v", descriptions(entries))
			}
			if e.SessionID() == "" {
				t.Error("expected a session id")
			}
		})
	}
}

func TestEngine_LoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		id, pin string
		wantErr error
	}{
		{"wrong pin", "user1", "9999", ErrInvalidCredentials},
		{"unknown id", "nobody", "1234", ErrInvalidCredentials},
		{"pin of another account", "user1", "5678", ErrInvalidCredentials},
		{"case differs", "USER1", "1234", ErrInvalidCredentials},
		{"empty id", "", "1234", ErrEmptyCredential},
		{"empty pin", "user1", "", ErrEmptyCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name+" while logged out", func(t *testing.T) {
			e, _ := newTestEngine(t)
			err := e.Login(tt.id, tt.pin)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if e.LoggedIn() || len(e.Entries()) != 0 {
				t.Error("failed login must not start a session or write history")
			}
		})

		t.Run(tt.name+" while logged in", func(t *testing.T) {
			e, _ := newTestEngine(t)
			mustLogin(t, e, "user2", "5678")
			if _, err := e.Deposit("100"); err != nil {
				t.Fatalf("deposit: %v", err)
			}
			session := e.SessionID()
			before := descriptions(e.Entries())

			if err := e.Login(tt.id, tt.pin); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			active, ok := e.Active()
			if !ok || active.ID != "user2" {
				t.Errorf("active account changed to %+v", active)
			}
			if e.SessionID() != session {
				t.Error("session id changed on failed login")
			}
			after := descriptions(e.Entries())
			if fmt.Sprint(after) != fmt.Sprint(before) {
				t.Errorf("history changed: %v -> %v", before, after)
			}
		})
	}
}

func TestEngine_WithdrawThenDeposit(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")

	balance, err := e.Withdraw("3000")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if balance != 7000 || balanceOf(t, e) != 7000 {
		t.Errorf("expected balance 7000, got %v", balance)
	}
	if got := e.Entries()[0].Description; got != "Withdraw: 3000" {
		t.Errorf("expected %q, got %q", "Withdraw: 3000", got)
	}

	balance, err = e.Deposit("500")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if balance != 7500 || balanceOf(t, e) != 7500 {
		t.Errorf("expected balance 7500, got %v", balance)
	}

	want := []string{"Deposit: 500", "Withdraw: 3000", "Login"}
	if got := descriptions(e.Entries()); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected history %v, got %v", want, got)
	}
}

func TestEngine_WithdrawExactBalance(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")

	balance, err := e.Withdraw("10000")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected zero balance, got %v", balance)
	}
}

func TestEngine_WithdrawAtLimit(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "admin", "0000")

	balance, err := e.Withdraw("50000")
	if err != nil {
		t.Fatalf("withdrawal equal to the limit should pass: %v", err)
	}
	if balance != 50000 {
		t.Errorf("expected balance 50000, got %v", balance)
	}
}

func TestEngine_WithdrawRejected(t *testing.T) {
	tests := []struct {
		name    string
		account string
		pin     string
		input   string
		wantErr error
	}{
		{"not a number", "user1", "1234", "abc", ErrInvalidAmount},
		{"empty", "user1", "1234", "", ErrInvalidAmount},
		{"trailing garbage", "user1", "1234", "12abc", ErrInvalidAmount},
		{"digit separator", "user1", "1234", "1_000", ErrInvalidAmount},
		{"zero", "user1", "1234", "0", ErrNonPositiveAmount},
		{"negative", "user1", "1234", "-5", ErrNonPositiveAmount},
		{"over limit with funds", "admin", "0000", "60000", ErrLimitExceeded},
		{"over limit without funds", "user1", "1234", "60000", ErrLimitExceeded},
		{"over balance under limit", "user1", "1234", "10000.01", ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t)
			mustLogin(t, e, tt.account, tt.pin)
			before := balanceOf(t, e)

			balance, err := e.Withdraw(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if balance != before || balanceOf(t, e) != before {
				t.Errorf("balance changed from %v to %v", before, balanceOf(t, e))
			}
			if len(e.Entries()) != 1 {
				t.Errorf("rejected withdrawal wrote history: %v", descriptions(e.Entries()))
			}
		})
	}
}

func TestEngine_LimitErrorMessage(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "admin", "0000")

	_, err := e.Withdraw("50000.5")
	if err == nil {
		t.Fatal("expected limit error")
	}
	if err.Error() != "withdrawal exceeds daily limit of 50000" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if ClassifyError(err) != ErrorTypeDailyLimit {
		t.Errorf("expected daily_limit classification, got %s", ClassifyError(err))
	}
}

func TestEngine_DepositRejected(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"-5", ErrNonPositiveAmount},
		{"0", ErrNonPositiveAmount},
		{"-0", ErrNonPositiveAmount},
		{"five", ErrInvalidAmount},
		{"NaN", ErrInvalidAmount},
		{"Inf", ErrInvalidAmount},
		{"1_000", ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, _ := newTestEngine(t)
			mustLogin(t, e, "user1", "1234")

			balance, err := e.Deposit(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if balance != 10000 || balanceOf(t, e) != 10000 {
				t.Errorf("balance changed to %v", balanceOf(t, e))
			}
			if len(e.Entries()) != 1 {
				t.Errorf("rejected deposit wrote history: %v", descriptions(e.Entries()))
			}
		})
	}
}

func TestEngine_DepositHasNoUpperBound(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")

	balance, err := e.Deposit(" 1000000 ")
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if balance != 1010000 {
		t.Errorf("expected 1010000, got %v", balance)
	}
}

func TestEngine_HistoryKeepsFiveMostRecent(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")

	ops := []func() error{
		func() error { _, err := e.Deposit("1"); return err },
		func() error { _, err := e.Deposit("2"); return err },
		func() error { _, err := e.Withdraw("3"); return err },
		func() error { _, err := e.CheckBalance(); return err },
		func() error { _, err := e.Deposit("5"); return err },
		func() error { _, err := e.Withdraw("6"); return err },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i+1, err)
		}
	}

	want := []string{"Withdraw: 6", "Deposit: 5", "Balance checked", "Withdraw: 3", "Deposit: 2"}
	entries := e.Entries()
	if got := descriptions(entries); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	for i := 1; i < len(entries); i++ {
		if !entries[i-1].Timestamp.After(entries[i].Timestamp) {
			t.Errorf("entries not newest first at %d", i)
		}
	}
}

func TestEngine_CheckBalance(t *testing.T) {
	e, rec := newTestEngine(t)
	mustLogin(t, e, "admin", "0000")

	balance, err := e.CheckBalance()
	if err != nil {
		t.Fatalf("check balance: %v", err)
	}
	if balance != 100000 {
		t.Errorf("expected 100000, got %v", balance)
	}
	if e.Entries()[0].Description != models.DescBalanceChecked {
		t.Errorf("expected balance inquiry in history, got %v", descriptions(e.Entries()))
	}
	if rec.last().Action != models.AuditBalanceInquiry {
		t.Errorf("expected balance_inquiry audit, got %s", rec.last().Action)
	}
}

func TestEngine_InterestSavings(t *testing.T) {
	e, rec := newTestEngine(t)
	mustLogin(t, e, "user2", "5678")

	report, err := e.CalculateInterest()
	if err != nil {
		t.Fatalf("calculate interest: %v", err)
	}
	if !report.Applicable || report.Notice != nil {
		t.Fatalf("expected applicable report, got %+v", report)
	}

	wantMonthly := 50000 * 0.05 / 12
	if math.Abs(report.MonthlyInterest-wantMonthly) > 1e-9 {
		t.Errorf("expected monthly %v, got %v", wantMonthly, report.MonthlyInterest)
	}
	if math.Abs(report.ProjectedBalance-(50000+wantMonthly)) > 1e-9 {
		t.Errorf("unexpected projected balance %v", report.ProjectedBalance)
	}
	if balanceOf(t, e) != 50000 {
		t.Errorf("interest must not change the stored balance, got %v", balanceOf(t, e))
	}
	if e.Entries()[0].Description != models.DescInterestCalculated {
		t.Errorf("expected interest entry, got %v", descriptions(e.Entries()))
	}
	if rec.last().Action != models.AuditInterestCalculated || rec.last().Amount == nil {
		t.Errorf("unexpected audit event %+v", rec.last())
	}
}

func TestEngine_InterestUsesConfiguredRate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Limits.InterestRate = 0.12
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	store, err := NewAccountStore(referenceAccounts())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	opts := OptionsFromConfig(cfg.Limits)
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(store, opts)
	mustLogin(t, e, "user2", "5678")

	report, err := e.CalculateInterest()
	if err != nil {
		t.Fatalf("calculate interest: %v", err)
	}
	if want := 50000 * 0.12 / 12; math.Abs(report.MonthlyInterest-want) > 1e-9 {
		t.Errorf("expected monthly %v at 12%%, got %v", want, report.MonthlyInterest)
	}

	cfg.Limits.InterestRate = 0
	if err := cfg.Validate(); err == nil {
		t.Error("a zero rate must be rejected before it reaches the engine")
	}
}

func TestEngine_InterestStandard(t *testing.T) {
	e, rec := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")

	report, err := e.CalculateInterest()
	if err != nil {
		t.Fatalf("non-savings interest is informational, got error %v", err)
	}
	if report.Applicable {
		t.Error("standard account should not be applicable")
	}
	if !errors.Is(report.Notice, ErrNotSavingsAccount) {
		t.Errorf("expected not-savings notice, got %v", report.Notice)
	}
	if report.Balance != 10000 || balanceOf(t, e) != 10000 {
		t.Errorf("balance changed to %v", balanceOf(t, e))
	}
	if len(e.Entries()) != 1 {
		t.Errorf("expected no history entry, got %v", descriptions(e.Entries()))
	}
	if rec.last().Action != models.AuditInterestNotEligible {
		t.Errorf("expected interest_not_eligible audit, got %s", rec.last().Action)
	}
}

func TestEngine_LogoutResetsHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")
	if _, err := e.Withdraw("3000"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	e.Logout()
	if e.LoggedIn() || e.SessionID() != "" || len(e.Entries()) != 0 {
		t.Fatal("logout should clear session and history")
	}

	// Logging out twice is harmless
	e.Logout()

	mustLogin(t, e, "user1", "1234")
	if got := descriptions(e.Entries()); len(got) != 1 || got[0] != models.DescLogin {
		t.Errorf("expected only Login after re-login, got %v", got)
	}
	// Balance survives the session
	if balanceOf(t, e) != 7000 {
		t.Errorf("expected balance 7000 after re-login, got %v", balanceOf(t, e))
	}
}

func TestEngine_LoginReplacesActiveSession(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")
	first := e.SessionID()
	if _, err := e.Deposit("10"); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	mustLogin(t, e, "user2", "5678")
	active, _ := e.Active()
	if active.ID != "user2" {
		t.Errorf("expected user2 active, got %s", active.ID)
	}
	if e.SessionID() == first {
		t.Error("expected a new session id")
	}
	if len(e.Entries()) != 1 {
		t.Errorf("expected fresh history, got %v", descriptions(e.Entries()))
	}
}

func TestEngine_OperationsRequireSession(t *testing.T) {
	e, _ := newTestEngine(t)

	if _, err := e.Withdraw("10"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("withdraw: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := e.Deposit("10"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("deposit: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := e.CheckBalance(); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("balance: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := e.CalculateInterest(); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("interest: expected ErrNoActiveSession, got %v", err)
	}
	if got := e.Metrics().Snapshot().ByError[ErrorTypeSession]; got != 4 {
		t.Errorf("expected 4 session errors, got %d", got)
	}
}

func TestEngine_AuditTrail(t *testing.T) {
	e, rec := newTestEngine(t)

	if err := e.Login("user1", "bad"); err == nil {
		t.Fatal("expected login failure")
	}
	failed := rec.last()
	if failed.Action != models.AuditLoginFailed || failed.AccountID != "user1" || failed.SessionID != "" {
		t.Errorf("unexpected failed-login event %+v", failed)
	}

	mustLogin(t, e, "user1", "1234")
	if _, err := e.Withdraw("oops"); err == nil {
		t.Fatal("expected invalid amount")
	}
	declined := rec.last()
	if declined.Action != models.AuditTransactionDeclined || declined.Outcome != models.OutcomeFailure {
		t.Errorf("unexpected decline event %+v", declined)
	}
	if declined.Amount != nil {
		t.Error("unparseable input must not be journaled as an amount")
	}

	if _, err := e.Withdraw("20000"); err == nil {
		t.Fatal("expected insufficient funds")
	}
	if rec.last().Amount == nil || *rec.last().Amount != 20000 {
		t.Errorf("expected declined amount 20000, got %+v", rec.last().Amount)
	}
	if rec.last().Outcome != models.OutcomeDenied {
		t.Errorf("rule rejection should be denied, got %s", rec.last().Outcome)
	}

	if _, err := e.Withdraw("100"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	done := rec.last()
	if done.Action != models.AuditTransactionCompleted || *done.BalanceAfter != 9900 {
		t.Errorf("unexpected completion event %+v", done)
	}
	if done.SessionID != "session-1" || done.Channel != models.AuditChannelATM || done.Timestamp.IsZero() {
		t.Errorf("event not stamped: %+v", done)
	}

	e.Logout()
	if rec.last().Action != models.AuditLogout || rec.last().SessionID != "session-1" {
		t.Errorf("unexpected logout event %+v", rec.last())
	}
	count := len(rec.logs)
	e.Logout()
	if len(rec.logs) != count {
		t.Error("logout while logged out should not be journaled")
	}
}

func TestEngine_AuditLoggedOutRejections(t *testing.T) {
	e, rec := newTestEngine(t)

	if err := e.Login("", "1234"); !errors.Is(err, ErrEmptyCredential) {
		t.Fatalf("expected ErrEmptyCredential, got %v", err)
	}
	empty := rec.last()
	if empty.Action != models.AuditLoginFailed || empty.Outcome != models.OutcomeFailure {
		t.Errorf("unexpected empty-credential event %+v", empty)
	}
	if empty.FailureReason != ErrEmptyCredential.Error() {
		t.Errorf("expected reason %q, got %q", ErrEmptyCredential.Error(), empty.FailureReason)
	}

	if _, err := e.CheckBalance(); !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
	denied := rec.last()
	if denied.Action != models.AuditSessionRequired || denied.Outcome != models.OutcomeDenied {
		t.Errorf("unexpected logged-out event %+v", denied)
	}
	if denied.Description != string(OpBalanceCheck) || denied.AccountID != "" || denied.SessionID != "" {
		t.Errorf("logged-out event should name the operation only: %+v", denied)
	}
	if denied.BalanceAfter != nil {
		t.Error("no balance exists without a session")
	}
}

func TestEngine_Metrics(t *testing.T) {
	e, _ := newTestEngine(t)
	mustLogin(t, e, "user1", "1234")
	_, _ = e.Withdraw("100")
	_, _ = e.Withdraw("999999")
	_, _ = e.Deposit("x")
	_, _ = e.CheckBalance()
	e.Logout()

	s := e.Metrics().Snapshot()
	if s.Sessions != 1 {
		t.Errorf("expected 1 session, got %d", s.Sessions)
	}
	if s.Operations != 4 {
		t.Errorf("expected 4 operations (login, withdraw, balance, logout), got %d", s.Operations)
	}
	if s.Errors != 2 {
		t.Errorf("expected 2 rejections, got %d", s.Errors)
	}
	if s.ByError[ErrorTypeDailyLimit] != 1 || s.ByError[ErrorTypeInput] != 1 {
		t.Errorf("unexpected error breakdown %v", s.ByError)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"500", 500, false},
		{" 12.5 ", 12.5, false},
		{"1e3", 1000, false},
		{"-5", -5, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1,000", 0, true},
		{"1_000", 0, true},
		{"0x10", 0, true},
		{"NaN", 0, true},
		{"+Inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
