package authclient

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// StepKind identifies a wizard step.
type StepKind string

const (
	StepKindEmail       StepKind = "email"
	StepKindPassword    StepKind = "password"
	StepKindCode        StepKind = "code"
	StepKindProfile     StepKind = "profile"
	StepKindNewPassword StepKind = "new_password"
)

// FlowStep is the tagged union of wizard states. Each variant carries
// exactly the data valid in that state: a verification code only exists on
// the registration branch, so an "accepted code for an existing account" is
// not representable.
type FlowStep interface {
	Kind() StepKind
}

// StepEmail collects the candidate address.
type StepEmail struct {
	Email string
}

func (StepEmail) Kind() StepKind { return StepKindEmail }

// StepPassword is the login branch: the address belongs to an existing
// account.
type StepPassword struct {
	Email string
}

func (StepPassword) Kind() StepKind { return StepKindPassword }

// StepCode is the registration branch: a one-time code was sent to the
// address.
type StepCode struct {
	Email string
}

func (StepCode) Kind() StepKind { return StepKindCode }

// StepProfile collects faculty and dormitory after the code was accepted.
type StepProfile struct {
	Email string
	Code  string
}

func (StepProfile) Kind() StepKind { return StepKindProfile }

// StepNewPassword is the final registration step.
type StepNewPassword struct {
	Email     string
	Code      string
	Faculty   string
	Dormitory string
}

func (StepNewPassword) Kind() StepKind { return StepKindNewPassword }

// FlowStatus is the flow's lifecycle state.
type FlowStatus string

const (
	// FlowActive means the wizard is open and accepting submits.
	FlowActive FlowStatus = "active"
	// FlowCommitted means a login or registration succeeded and the session
	// was populated.
	FlowCommitted FlowStatus = "committed"
	// FlowCancelled means the wizard was closed; all state was discarded.
	FlowCancelled FlowStatus = "cancelled"
)

// FlowOption customizes Flow construction.
type FlowOption func(*Flow)

// WithFlowLogger overrides the default logger.
func WithFlowLogger(logger Logger) FlowOption {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFlowDebug enables payload logging.
func WithFlowDebug(debug bool) FlowOption {
	return func(f *Flow) {
		f.debug = debug
	}
}

// Flow drives the login/registration wizard. One Flow corresponds to one
// open modal: it starts at the email step and ends committed (session
// populated) or cancelled (state discarded). Submits are strictly
// sequential; a submit while the previous step's remote call is unresolved
// is rejected, and a response arriving after Cancel never writes state.
type Flow struct {
	mu          sync.Mutex
	svc         AuthService
	session     *Manager
	logger      Logger
	debug       bool
	status      FlowStatus
	step        FlowStep
	generation  uint64
	inFlight    bool
	transitions map[StepKind]map[StepKind]struct{}
}

// NewFlow returns an active flow at the email step.
func NewFlow(svc AuthService, session *Manager, opts ...FlowOption) *Flow {
	f := &Flow{
		svc:     svc,
		session: session,
		logger:  defLogger{},
		status:  FlowActive,
		step:    StepEmail{},
		transitions: map[StepKind]map[StepKind]struct{}{
			StepKindEmail: {
				StepKindPassword: {},
				StepKindCode:     {},
			},
			StepKindCode: {
				StepKindProfile: {},
			},
			StepKindProfile: {
				StepKindNewPassword: {},
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	return f
}

// Status returns the flow's lifecycle state.
func (f *Flow) Status() FlowStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Current returns the current step; nil once the flow is closed.
func (f *Flow) Current() FlowStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// SubmitEmail resolves whether the address has an account. Existing
// accounts advance to the password step. New addresses get a one-time code
// sent as part of the same logical step: if the send fails, the flow stays
// on the email step and surfaces the error, so either both calls succeed
// and the user advances, or nothing advances.
func (f *Flow) SubmitEmail(ctx context.Context, email string) error {
	gen, _, err := f.beginCall(StepKindEmail)
	if err != nil {
		return err
	}

	payload := EmailPayload{Email: email}
	if err := payload.Validate(); err != nil {
		f.abortCall(gen)
		return FieldError(err, "invalid email address")
	}

	f.debugPayload("check-email", payload)

	exists, callErr := f.svc.CheckEmail(ctx, email)

	var sendErr error
	if callErr == nil && !exists {
		sendErr = f.svc.SendVerificationCode(ctx, email)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.settleLocked(gen) {
		return ErrFlowClosed
	}

	if callErr != nil {
		return callErr
	}

	if sendErr != nil {
		f.logger.Warn("verification code send failed for %s: %v", email, sendErr)
		return sendErr
	}

	if exists {
		return f.advanceLocked(StepPassword{Email: email})
	}
	return f.advanceLocked(StepCode{Email: email})
}

// SubmitPassword attempts a login for the resolved account. Success
// populates the session and commits the flow; failure keeps the password
// step with the surfaced reason.
func (f *Flow) SubmitPassword(ctx context.Context, password string) error {
	gen, cur, err := f.beginCall(StepKindPassword)
	if err != nil {
		return err
	}
	step := cur.(StepPassword)

	if password == "" {
		f.abortCall(gen)
		return FieldError(goerrors.New("password is required", goerrors.CategoryValidation), "password is required")
	}

	creds, callErr := f.svc.Login(ctx, step.Email, password)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.settleLocked(gen) {
		return ErrFlowClosed
	}

	if callErr != nil {
		return callErr
	}

	if creds.Email == "" {
		creds.Email = step.Email
	}
	f.commitLocked(*creds)
	return nil
}

// SubmitCode verifies the one-time code and advances to the profile step.
func (f *Flow) SubmitCode(ctx context.Context, code string) error {
	gen, cur, err := f.beginCall(StepKindCode)
	if err != nil {
		return err
	}
	step := cur.(StepCode)

	payload := CodePayload{Code: code}
	if err := payload.Validate(); err != nil {
		f.abortCall(gen)
		return FieldError(err, "invalid verification code")
	}

	f.debugPayload("verify-code", payload)

	valid, callErr := f.svc.VerifyCode(ctx, step.Email, code)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.settleLocked(gen) {
		return ErrFlowClosed
	}

	if callErr != nil {
		return callErr
	}

	if !valid {
		return RejectionError("verify-code", "the verification code was not accepted", 0)
	}

	return f.advanceLocked(StepProfile{Email: step.Email, Code: code})
}

// SubmitProfile records faculty and dormitory. Purely local: no remote call
// is made until the password is created. An empty dormitory selects the
// no-dorm sentinel.
func (f *Flow) SubmitProfile(faculty, dormitory string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != FlowActive {
		return ErrFlowClosed
	}
	if f.inFlight {
		return ErrCallInFlight
	}

	step, ok := f.step.(StepProfile)
	if !ok {
		return f.transitionError(StepKindProfile)
	}

	if dormitory == "" {
		dormitory = DormitoryNone
	}

	payload := ProfilePayload{Faculty: faculty, Dormitory: dormitory}
	if err := payload.Validate(); err != nil {
		return FieldError(err, "invalid profile")
	}

	return f.advanceLocked(StepNewPassword{
		Email:     step.Email,
		Code:      step.Code,
		Faculty:   faculty,
		Dormitory: dormitory,
	})
}

// SubmitNewPassword validates strength and confirmation, registers the
// account, and commits the flow on success.
func (f *Flow) SubmitNewPassword(ctx context.Context, password, confirm string) error {
	gen, cur, err := f.beginCall(StepKindNewPassword)
	if err != nil {
		return err
	}
	step := cur.(StepNewPassword)

	payload := NewPasswordPayload{Password: password, ConfirmPassword: confirm}
	if err := payload.Validate(); err != nil {
		f.abortCall(gen)
		return FieldError(err, "invalid password")
	}

	creds, callErr := f.svc.Register(ctx, RegisterRequest{
		Email:     step.Email,
		Password:  password,
		Code:      step.Code,
		Faculty:   step.Faculty,
		Dormitory: step.Dormitory,
	})

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.settleLocked(gen) {
		return ErrFlowClosed
	}

	if callErr != nil {
		return callErr
	}

	if creds.Email == "" {
		creds.Email = step.Email
	}
	f.commitLocked(*creds)
	return nil
}

// Cancel closes the wizard and discards all flow state. An in-flight
// request is not interrupted, but its response will find a newer generation
// and be ignored. Idempotent.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != FlowActive {
		return
	}

	f.status = FlowCancelled
	f.generation++
	f.inFlight = false
	f.step = nil
}

// beginCall gates a submit: the flow must be active, on the expected step,
// with no unresolved call. It marks the call in flight and returns the
// generation it was issued under plus a copy of the current step.
func (f *Flow) beginCall(kind StepKind) (uint64, FlowStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != FlowActive {
		return 0, nil, ErrFlowClosed
	}
	if f.inFlight {
		return 0, nil, ErrCallInFlight
	}
	if f.step == nil || f.step.Kind() != kind {
		return 0, nil, f.transitionError(kind)
	}

	f.inFlight = true
	return f.generation, f.step, nil
}

// abortCall releases the in-flight gate without touching the step; used
// when local validation fails before any remote call.
func (f *Flow) abortCall(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation == gen {
		f.inFlight = false
	}
}

// settleLocked resolves a returned call. False means the flow moved on
// (cancelled or superseded) and the result must be discarded without any
// state write.
func (f *Flow) settleLocked(gen uint64) bool {
	if f.generation != gen || f.status != FlowActive {
		return false
	}
	f.inFlight = false
	return true
}

func (f *Flow) advanceLocked(next FlowStep) error {
	from := f.step.Kind()
	to := next.Kind()

	if allowed, ok := f.transitions[from]; ok {
		if _, ok := allowed[to]; ok {
			f.step = next
			return nil
		}
	}

	return ErrInvalidTransition.WithMetadata(map[string]any{
		"from": from,
		"to":   to,
	})
}

func (f *Flow) commitLocked(creds Credentials) {
	f.session.Commit(creds)
	f.status = FlowCommitted
	f.step = nil
}

func (f *Flow) transitionError(want StepKind) error {
	meta := map[string]any{"want": want}
	if f.step != nil {
		meta["have"] = f.step.Kind()
	}
	return ErrInvalidTransition.WithMetadata(meta)
}

func (f *Flow) debugPayload(name string, payload any) {
	if !f.debug {
		return
	}
	f.logger.Debug("auth flow %s payload: %s", name, print.MaybePrettyJSON(payload))
}
