package auth

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/ledgerly/server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashOTPHex(t *testing.T) {
	h1 := hashOTPHex("ana@example.com", "123456", "salt")
	h2 := hashOTPHex("ana@example.com", "123456", "salt")
	assert.Equal(t, h1, h2)

	decoded, err := hex.DecodeString(h1)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)

	assert.NotEqual(t, h1, hashOTPHex("bob@example.com", "123456", "salt"))
	assert.NotEqual(t, h1, hashOTPHex("ana@example.com", "654321", "salt"))
	assert.NotEqual(t, h1, hashOTPHex("ana@example.com", "123456", "pepper"))
}

func TestOTPManager_Generate(t *testing.T) {
	clock := newTestClock()
	m := NewOTPManager("salt", false, "", WithClock(clock.Now))

	user := model.User{Email: "ana@example.com"}
	code, err := m.Generate(&user)
	require.NoError(t, err)

	assert.Len(t, code, 6)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, code)
	assert.True(t, user.HasOTP())
	assert.NotContains(t, user.OTPHash, code)
	assert.Equal(t, clock.now.Add(10*time.Minute), *user.OTPExpiresAt)
}

func TestOTPManager_GenerateOverwritesPrevious(t *testing.T) {
	m := NewOTPManager("salt", false, "")
	user := model.User{Email: "ana@example.com"}

	var first string
	// retry until the codes differ; a collision is a 1 in 900000 event
	for i := 0; i < 5; i++ {
		var err error
		first, err = m.Generate(&user)
		require.NoError(t, err)
		second, err := m.Generate(&user)
		require.NoError(t, err)
		if first != second {
			assert.False(t, m.Validate(&user, first))
			assert.True(t, m.Validate(&user, second))
			return
		}
	}
	t.Fatal("generator kept returning the same code")
}

func TestOTPManager_DevMode(t *testing.T) {
	m := NewOTPManager("salt", true, "123456")
	user := model.User{Email: "ana@example.com"}

	code, err := m.Generate(&user)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.True(t, m.DevMode())
	assert.True(t, m.Validate(&user, "123456"))
}

func TestOTPManager_Validate(t *testing.T) {
	clock := newTestClock()
	m := NewOTPManager("salt", true, "123456", WithClock(clock.Now))

	t.Run("no code set", func(t *testing.T) {
		assert.False(t, m.Validate(&model.User{Email: "ana@example.com"}, "123456"))
	})

	user := model.User{Email: "ana@example.com"}
	_, err := m.Generate(&user)
	require.NoError(t, err)
	snapshot := user

	t.Run("wrong code leaves state untouched", func(t *testing.T) {
		assert.False(t, m.Validate(&user, "000000"))
		assert.Equal(t, snapshot, user)
	})

	t.Run("code bound to email", func(t *testing.T) {
		other := user
		other.Email = "bob@example.com"
		assert.False(t, m.Validate(&other, "123456"))
	})

	t.Run("expiry is exclusive", func(t *testing.T) {
		c := *clock
		boundary := NewOTPManager("salt", true, "123456", WithClock(c.Now))

		c.Advance(10*time.Minute - time.Nanosecond)
		assert.True(t, boundary.Validate(&user, "123456"))

		c.Advance(time.Nanosecond)
		assert.False(t, boundary.Validate(&user, "123456"))
	})

	t.Run("consume clears both fields", func(t *testing.T) {
		u := user
		m.Consume(&u)
		assert.False(t, u.HasOTP())
		assert.Empty(t, u.OTPHash)
		assert.Nil(t, u.OTPExpiresAt)
		assert.False(t, m.Validate(&u, "123456"))
	})
}
