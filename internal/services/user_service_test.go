package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"imovel-backend/internal/metrics"
	"imovel-backend/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T, users *fakeUserStore) (*UserService, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	tokens := NewTokenManager(testSecret, 72*time.Hour, nil)
	return NewUserService(users, tokens, PasswordVerifier{AllowLegacy: true}, metrics.New(reg)), reg
}

func bcryptHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_Login(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.User{
		"ana":   {ID: 1, Username: "ana", PasswordHash: bcryptHash(t, "segredo")},
		"bruno": {ID: 2, Username: "bruno", PasswordHash: MySQLNativeHash("antiga")},
	}}
	svc, reg := newTestUserService(t, users)
	ctx := context.Background()

	resp, err := svc.Login(ctx, models.LoginRequest{Username: "ana", Password: "segredo"})
	require.NoError(t, err)
	assert.Equal(t, models.UserInfo{ID: 1, Username: "ana"}, resp.User)
	assert.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	resp, err = svc.Login(ctx, models.LoginRequest{Username: "bruno", Password: "antiga"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.User.ID)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "ana", Password: "errada"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	expected := `
# HELP imovel_logins_total Login attempts by result.
# TYPE imovel_logins_total counter
imovel_logins_total{result="denied"} 1
imovel_logins_total{result="ok"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "imovel_logins_total"))
}

func TestUserService_LoginRejected(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.User{
		"ana": {ID: 1, Username: "ana", PasswordHash: bcryptHash(t, "segredo")},
	}}
	svc, _ := newTestUserService(t, users)

	tests := []struct {
		name string
		req  models.LoginRequest
	}{
		{"wrong password", models.LoginRequest{Username: "ana", Password: "errada"}},
		{"unknown user", models.LoginRequest{Username: "carla", Password: "segredo"}},
		{"empty fields", models.LoginRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), tt.req)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestUserService_LoginStoreFailure(t *testing.T) {
	svc, _ := newTestUserService(t, &fakeUserStore{err: errors.New("connection refused")})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ana", Password: "x"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Logout(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.User{
		"ana": {ID: 1, Username: "ana", PasswordHash: bcryptHash(t, "segredo")},
	}}
	svc, _ := newTestUserService(t, users)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "ana", Password: "segredo"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)

	svc.Logout(claims)
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrCredentialRevoked)
}
