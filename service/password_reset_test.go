package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"celengan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type capturedMail struct {
	to, name, link string
}

type fakeMailer struct {
	mails []capturedMail
	err   error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, name, link string) error {
	if m.err != nil {
		return m.err
	}
	m.mails = append(m.mails, capturedMail{to, name, link})
	return nil
}

func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.mails)
	u, err := url.Parse(m.mails[len(m.mails)-1].link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func newResetFixture(t *testing.T) (*PasswordResetService, *fakeMailer, *UserService) {
	db := newTestDB(t)
	users := NewUserService(db)
	users.cost = bcrypt.MinCost
	_, err := users.Register(ctx, RegisterCommand{Name: "Budi", Email: "budi@example.com", Password: "rahasia123"})
	require.NoError(t, err)

	mailer := &fakeMailer{}
	svc := NewPasswordResetService(db, mailer, "https://celengan.example/")
	svc.cost = bcrypt.MinCost
	return svc, mailer, users
}

func TestPasswordReset_Flow(t *testing.T) {
	svc, mailer, users := newResetFixture(t)

	require.NoError(t, svc.RequestReset(ctx, " BUDI@example.com "))
	require.Len(t, mailer.mails, 1)
	assert.Equal(t, "budi@example.com", mailer.mails[0].to)
	assert.Contains(t, mailer.mails[0].link, "https://celengan.example/reset-password?token=")
	token := mailer.lastToken(t)

	var stored models.PasswordReset
	require.NoError(t, svc.db.First(&stored).Error)
	assert.NotEqual(t, token, stored.TokenHash, "plain token is never stored")

	require.NoError(t, svc.ResetPassword(ctx, token, "baru12345"))
	_, err := users.Authenticate(ctx, "budi@example.com", "baru12345")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, token, "lagi12345")
	assert.Equal(t, CodeInvalidResetToken, ErrorCode(err), "single use")
}

func TestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, mailer, _ := newResetFixture(t)
	require.NoError(t, svc.RequestReset(ctx, "nobody@example.com"))
	assert.Empty(t, mailer.mails)
}

func TestPasswordReset_NewRequestRetiresOldToken(t *testing.T) {
	svc, mailer, _ := newResetFixture(t)
	require.NoError(t, svc.RequestReset(ctx, "budi@example.com"))
	first := mailer.lastToken(t)
	require.NoError(t, svc.RequestReset(ctx, "budi@example.com"))
	second := mailer.lastToken(t)

	assert.Equal(t, CodeInvalidResetToken, ErrorCode(svc.ResetPassword(ctx, first, "baru12345")))
	require.NoError(t, svc.ResetPassword(ctx, second, "baru12345"))
}

func TestPasswordReset_Expired(t *testing.T) {
	svc, mailer, _ := newResetFixture(t)
	issued := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	require.NoError(t, svc.RequestReset(ctx, "budi@example.com"))

	svc.now = func() time.Time { return issued.Add(31 * time.Minute) }
	err := svc.ResetPassword(ctx, mailer.lastToken(t), "baru12345")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, CodeInvalidResetToken, ErrorCode(err))
}

func TestPasswordReset_Rejections(t *testing.T) {
	svc, mailer, _ := newResetFixture(t)
	assert.Equal(t, CodeInvalidResetToken, ErrorCode(svc.ResetPassword(ctx, "bogus", "baru12345")))
	assert.Equal(t, CodeInvalidInput, ErrorCode(svc.ResetPassword(ctx, "bogus", "123")))

	mailer.err = ErrEmailDisabled
	err := svc.RequestReset(ctx, "budi@example.com")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, CodeEmailDisabled, ErrorCode(err))
}
