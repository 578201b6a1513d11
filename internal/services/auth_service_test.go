package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prenciarlinda-webwise/webwise-webservice/internal/models"
)

func seedLoginUser(t *testing.T, db *gorm.DB, email, password string, active bool) *models.User {
	t.Helper()
	hash, err := NewPasswordService().Hash(password)
	require.NoError(t, err)
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Casey",
		LastName:     "Client",
		Role:         models.RoleClient,
		IsActive:     active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthServiceForTest(db)
	seedLoginUser(t, db, "casey@example.com", "correct-horse", true)
	seedLoginUser(t, db, "gone@example.com", "correct-horse", false)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct-horse"},
		{"wrong password", "casey@example.com", "wrong-horse"},
		{"deactivated account", "gone@example.com", "correct-horse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(testCtx(), tc.email, tc.password)
			perm, ok := IsPermissionError(err)
			require.True(t, ok)
			assert.Equal(t, "invalid email or password", perm.Message)
		})
	}
}

func TestLoginIssuesTokenPairAndSession(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthServiceForTest(db)
	user := seedLoginUser(t, db, "casey@example.com", "correct-horse", true)

	// Email is matched case-insensitively with surrounding space ignored.
	result, err := svc.Login(testCtx(), "  Casey@Example.COM ", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, user.ID, result.User.ID)

	var sessions int64
	require.NoError(t, db.Model(&models.TokenSession{}).Where("user_id = ? AND is_active = ?", user.ID, true).Count(&sessions).Error)
	assert.EqualValues(t, 1, sessions)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthServiceForTest(db)
	seedLoginUser(t, db, "casey@example.com", "correct-horse", true)

	login, err := svc.Login(testCtx(), "casey@example.com", "correct-horse")
	require.NoError(t, err)

	rotated, err := svc.Refresh(testCtx(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The consumed token no longer refreshes.
	_, err = svc.Refresh(testCtx(), login.RefreshToken)
	_, ok := IsPermissionError(err)
	assert.True(t, ok)

	// The rotated one still does.
	_, err = svc.Refresh(testCtx(), rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestLogoutRevokesRefreshSession(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthServiceForTest(db)
	seedLoginUser(t, db, "casey@example.com", "correct-horse", true)

	err := svc.Logout(testCtx(), "not-a-jwt")
	_, ok := IsValidationError(err)
	assert.True(t, ok)

	login, err := svc.Login(testCtx(), "casey@example.com", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(testCtx(), login.RefreshToken))

	_, err = svc.Refresh(testCtx(), login.RefreshToken)
	_, ok = IsPermissionError(err)
	assert.True(t, ok)
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newAuthServiceForTest(db)
	user := seedLoginUser(t, db, "casey@example.com", "correct-horse", true)

	login, err := svc.Login(testCtx(), "casey@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = svc.Refresh(testCtx(), login.RefreshToken)
	perm, ok := IsPermissionError(err)
	require.True(t, ok)
	assert.Equal(t, "account is disabled", perm.Message)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc, users := newAuthServiceForTest(db)
	user := seedLoginUser(t, db, "casey@example.com", "correct-horse", true)

	err := svc.ChangePassword(testCtx(), user, "wrong-horse", "brand-new-pass")
	validation, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "old_password")

	err = svc.ChangePassword(testCtx(), user, "correct-horse", "short")
	validation, ok = IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validation.Fields, "new_password")

	require.NoError(t, svc.ChangePassword(testCtx(), user, "correct-horse", "brand-new-pass"))

	reloaded, err := users.GetByID(testCtx(), user.ID)
	require.NoError(t, err)
	assert.True(t, NewPasswordService().Check(reloaded.PasswordHash, "brand-new-pass"))

	_, err = svc.Login(testCtx(), "casey@example.com", "correct-horse")
	_, ok = IsPermissionError(err)
	assert.True(t, ok)
	_, err = svc.Login(testCtx(), "casey@example.com", "brand-new-pass")
	assert.NoError(t, err)
}
