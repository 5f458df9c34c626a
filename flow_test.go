package authclient_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authclient "github.com/sharif-senfi/go-auth-client"
)

func newTestFlow(svc authclient.AuthService) (*authclient.Flow, *authclient.Manager) {
	session := authclient.NewManager(nil)
	return authclient.NewFlow(svc, session), session
}

func TestFlowLoginPath(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "student@sharif.edu").Return(true, nil)
	svc.On("Login", mock.Anything, "student@sharif.edu", "Abc123!@").Return(&authclient.Credentials{
		Token: "tok-login",
		Email: "student@sharif.edu",
		Role:  authclient.RoleSimpleUser,
	}, nil)

	flow, session := newTestFlow(svc)

	require.NoError(t, flow.SubmitEmail(context.Background(), "student@sharif.edu"))
	require.IsType(t, authclient.StepPassword{}, flow.Current())

	require.NoError(t, flow.SubmitPassword(context.Background(), "Abc123!@"))

	assert.Equal(t, authclient.FlowCommitted, flow.Status())
	assert.Nil(t, flow.Current())
	assert.Equal(t, "tok-login", session.Token())
	assert.Equal(t, "student@sharif.edu", session.Email())
	svc.AssertExpectations(t)
}

func TestFlowRegistrationPath(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "new@sharif.edu").Return(false, nil)
	svc.On("SendVerificationCode", mock.Anything, "new@sharif.edu").Return(nil)
	svc.On("VerifyCode", mock.Anything, "new@sharif.edu", "123456").Return(true, nil)
	svc.On("Register", mock.Anything, authclient.RegisterRequest{
		Email:     "new@sharif.edu",
		Password:  "Abc123!@",
		Code:      "123456",
		Faculty:   "computer_engineering",
		Dormitory: authclient.DormitoryNone,
	}).Return(&authclient.Credentials{
		Token: "tok-reg",
		Email: "new@sharif.edu",
		Role:  authclient.RoleSimpleUser,
	}, nil)

	flow, session := newTestFlow(svc)

	require.NoError(t, flow.SubmitEmail(context.Background(), "new@sharif.edu"))
	require.IsType(t, authclient.StepCode{}, flow.Current())

	require.NoError(t, flow.SubmitCode(context.Background(), "123456"))
	require.IsType(t, authclient.StepProfile{}, flow.Current())

	// empty dormitory selects the no-dorm sentinel
	require.NoError(t, flow.SubmitProfile("computer_engineering", ""))
	step, ok := flow.Current().(authclient.StepNewPassword)
	require.True(t, ok)
	assert.Equal(t, authclient.DormitoryNone, step.Dormitory)
	assert.Equal(t, "123456", step.Code)

	require.NoError(t, flow.SubmitNewPassword(context.Background(), "Abc123!@", "Abc123!@"))

	assert.Equal(t, authclient.FlowCommitted, flow.Status())
	assert.Equal(t, "tok-reg", session.Token())
	svc.AssertExpectations(t)
}

func TestFlowInvalidEmailMakesNoRemoteCall(t *testing.T) {
	svc := &MockAuthService{}
	flow, _ := newTestFlow(svc)

	err := flow.SubmitEmail(context.Background(), "student@gmail.com")
	require.Error(t, err)
	assert.True(t, authclient.IsFieldError(err))

	// still on the email step, and retrying with a good address works
	require.IsType(t, authclient.StepEmail{}, flow.Current())
	svc.AssertNotCalled(t, "CheckEmail", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "SendVerificationCode", mock.Anything, mock.Anything)
}

func TestFlowSendCodeFailureStaysOnEmailStep(t *testing.T) {
	sendErr := errors.New("smtp relay down")
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "new@sharif.edu").Return(false, nil)
	svc.On("SendVerificationCode", mock.Anything, "new@sharif.edu").Return(sendErr).Once()

	flow, _ := newTestFlow(svc)

	err := flow.SubmitEmail(context.Background(), "new@sharif.edu")
	require.ErrorIs(t, err, sendErr)

	// the check and the send are one logical step; a failed send never
	// half-advances the wizard
	require.IsType(t, authclient.StepEmail{}, flow.Current())
	assert.Equal(t, authclient.FlowActive, flow.Status())

	// the step can be retried
	svc.On("SendVerificationCode", mock.Anything, "new@sharif.edu").Return(nil).Once()
	require.NoError(t, flow.SubmitEmail(context.Background(), "new@sharif.edu"))
	require.IsType(t, authclient.StepCode{}, flow.Current())
}

func TestFlowRejectedCodeStaysOnCodeStep(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "new@sharif.edu").Return(false, nil)
	svc.On("SendVerificationCode", mock.Anything, "new@sharif.edu").Return(nil)
	svc.On("VerifyCode", mock.Anything, "new@sharif.edu", "111111").Return(false, nil)

	flow, _ := newTestFlow(svc)
	require.NoError(t, flow.SubmitEmail(context.Background(), "new@sharif.edu"))

	err := flow.SubmitCode(context.Background(), "111111")
	require.Error(t, err)
	assert.True(t, authclient.IsRejectionError(err))
	require.IsType(t, authclient.StepCode{}, flow.Current())
}

func TestFlowFailedLoginKeepsPasswordStep(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "student@sharif.edu").Return(true, nil)
	svc.On("Login", mock.Anything, "student@sharif.edu", "wrong").
		Return((*authclient.Credentials)(nil), authclient.RejectionError("login", "wrong password", 403))

	flow, session := newTestFlow(svc)
	require.NoError(t, flow.SubmitEmail(context.Background(), "student@sharif.edu"))

	err := flow.SubmitPassword(context.Background(), "wrong")
	require.Error(t, err)
	assert.True(t, authclient.IsRejectionError(err))

	require.IsType(t, authclient.StepPassword{}, flow.Current())
	assert.Equal(t, authclient.FlowActive, flow.Status())
	assert.False(t, session.IsAuthenticated())
}

func TestFlowOutOfOrderSubmits(t *testing.T) {
	svc := &MockAuthService{}
	flow, _ := newTestFlow(svc)

	// still on the email step
	err := flow.SubmitCode(context.Background(), "123456")
	assert.ErrorIs(t, err, authclient.ErrInvalidTransition)

	err = flow.SubmitPassword(context.Background(), "Abc123!@")
	assert.ErrorIs(t, err, authclient.ErrInvalidTransition)

	err = flow.SubmitProfile("physics", "")
	assert.ErrorIs(t, err, authclient.ErrInvalidTransition)

	svc.AssertNotCalled(t, "VerifyCode", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlowCancelDiscardsState(t *testing.T) {
	svc := &MockAuthService{}
	flow, _ := newTestFlow(svc)

	flow.Cancel()
	assert.Equal(t, authclient.FlowCancelled, flow.Status())
	assert.Nil(t, flow.Current())

	flow.Cancel() // idempotent

	err := flow.SubmitEmail(context.Background(), "student@sharif.edu")
	assert.ErrorIs(t, err, authclient.ErrFlowClosed)
}

func TestFlowLateResponseAfterCancelIsIgnored(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := &stubAuthService{
		checkEmail: func(ctx context.Context, email string) (bool, error) {
			close(started)
			<-release
			return true, nil
		},
	}

	flow, _ := newTestFlow(svc)

	var wg sync.WaitGroup
	var submitErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		submitErr = flow.SubmitEmail(context.Background(), "student@sharif.edu")
	}()

	<-started
	flow.Cancel()
	close(release)
	wg.Wait()

	// the in-flight response found a closed flow and wrote nothing
	assert.ErrorIs(t, submitErr, authclient.ErrFlowClosed)
	assert.Equal(t, authclient.FlowCancelled, flow.Status())
	assert.Nil(t, flow.Current())
}

func TestFlowSecondSubmitWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := &stubAuthService{
		checkEmail: func(ctx context.Context, email string) (bool, error) {
			close(started)
			<-release
			return true, nil
		},
	}

	flow, _ := newTestFlow(svc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = flow.SubmitEmail(context.Background(), "student@sharif.edu")
	}()

	<-started
	err := flow.SubmitEmail(context.Background(), "student@sharif.edu")
	assert.ErrorIs(t, err, authclient.ErrCallInFlight)

	close(release)
	wg.Wait()

	// the first submit resolved normally
	require.IsType(t, authclient.StepPassword{}, flow.Current())
}

func TestFlowEmptyPasswordRejectedLocally(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "student@sharif.edu").Return(true, nil)

	flow, _ := newTestFlow(svc)
	require.NoError(t, flow.SubmitEmail(context.Background(), "student@sharif.edu"))

	err := flow.SubmitPassword(context.Background(), "")
	require.Error(t, err)
	assert.True(t, authclient.IsFieldError(err))
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)

	// the gate was released, a real attempt still works
	svc.On("Login", mock.Anything, "student@sharif.edu", "Abc123!@").Return(&authclient.Credentials{
		Token: "tok",
		Email: "student@sharif.edu",
		Role:  authclient.RoleSimpleUser,
	}, nil)
	require.NoError(t, flow.SubmitPassword(context.Background(), "Abc123!@"))
}

func TestFlowWeakNewPasswordRejectedLocally(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "new@sharif.edu").Return(false, nil)
	svc.On("SendVerificationCode", mock.Anything, "new@sharif.edu").Return(nil)
	svc.On("VerifyCode", mock.Anything, "new@sharif.edu", "123456").Return(true, nil)

	flow, _ := newTestFlow(svc)
	require.NoError(t, flow.SubmitEmail(context.Background(), "new@sharif.edu"))
	require.NoError(t, flow.SubmitCode(context.Background(), "123456"))
	require.NoError(t, flow.SubmitProfile("physics", "tarasht_2"))

	err := flow.SubmitNewPassword(context.Background(), "weak", "weak")
	require.Error(t, err)
	assert.True(t, authclient.IsFieldError(err))
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)

	err = flow.SubmitNewPassword(context.Background(), "Abc123!@", "different")
	require.Error(t, err)
	assert.True(t, authclient.IsFieldError(err))

	require.IsType(t, authclient.StepNewPassword{}, flow.Current())
}

func TestFlowSubmitAfterCommitIsRejected(t *testing.T) {
	svc := &MockAuthService{}
	svc.On("CheckEmail", mock.Anything, "student@sharif.edu").Return(true, nil)
	svc.On("Login", mock.Anything, "student@sharif.edu", "Abc123!@").Return(&authclient.Credentials{
		Token: "tok",
		Email: "student@sharif.edu",
		Role:  authclient.RoleSimpleUser,
	}, nil)

	flow, _ := newTestFlow(svc)
	require.NoError(t, flow.SubmitEmail(context.Background(), "student@sharif.edu"))
	require.NoError(t, flow.SubmitPassword(context.Background(), "Abc123!@"))

	err := flow.SubmitPassword(context.Background(), "Abc123!@")
	assert.ErrorIs(t, err, authclient.ErrFlowClosed)
}
