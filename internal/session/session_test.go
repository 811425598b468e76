package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StephenBergman/FitSwap/internal/utils"
)

func TestManagerSignInSignOut(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID.String())
	require.NoError(t, err)

	manager := NewManager(jwtService, false)

	_, err = manager.Current()
	assert.ErrorIs(t, err, ErrNoSession)

	sess, err := manager.SignIn(token)
	require.NoError(t, err)
	assert.Equal(t, userID, sess.UserID)
	assert.False(t, sess.IncludeSelf)

	current, err := manager.Current()
	require.NoError(t, err)
	assert.Equal(t, sess, current)

	// Teardown-функции вызываются при выходе в порядке регистрации
	var order []string
	manager.OnSignOut(func() { order = append(order, "projection") })
	manager.OnSignOut(func() { order = append(order, "relay") })

	manager.SignOut()
	assert.Equal(t, []string{"projection", "relay"}, order)

	_, err = manager.Current()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerDevModeIncludesSelf(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	token, err := jwtService.GenerateToken(uuid.New().String())
	require.NoError(t, err)

	manager := NewManager(jwtService, true)
	sess, err := manager.SignIn(token)
	require.NoError(t, err)
	assert.True(t, sess.IncludeSelf)
}

func TestManagerRejectsBadTokens(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	manager := NewManager(jwtService, false)

	t.Run("Garbage", func(t *testing.T) {
		_, err := manager.SignIn("не.jwt.вовсе")
		assert.Error(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := utils.NewJWTService("other-secret")
		token, err := other.GenerateToken(uuid.New().String())
		require.NoError(t, err)

		_, err = manager.SignIn(token)
		assert.Error(t, err)
	})

	t.Run("NonUUIDSubject", func(t *testing.T) {
		token, err := jwtService.GenerateToken("user-42")
		require.NoError(t, err)

		_, err = manager.SignIn(token)
		assert.Error(t, err)
	})
}
