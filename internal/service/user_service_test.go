package service

import (
	"strings"
	"testing"

	"pro-network/internal/model"
	"pro-network/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() RegisterInput {
	return RegisterInput{
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "analytical",
		Password2: "analytical",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, token, err := env.users.Register(validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "analytical", user.PasswordHash)

	me, err := env.users.Me(user.ID)
	require.NoError(t, err)
	require.NotNil(t, me.Profile)

	_, token, err = env.users.Login("ada@example.com", "analytical")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = env.users.Login("ada", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = env.users.Login("nobody", "analytical")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]func(in *RegisterInput){
		"username":   func(in *RegisterInput) { in.Username = " " },
		"username ":  func(in *RegisterInput) { in.Username = "has space" },
		"first_name": func(in *RegisterInput) { in.FirstName = strings.Repeat("a", 31) },
		"last_name":  func(in *RegisterInput) { in.LastName = "" },
		"email":      func(in *RegisterInput) { in.Email = "not-an-email" },
		"password":   func(in *RegisterInput) { in.Password, in.Password2 = "short", "short" },
		"password2":  func(in *RegisterInput) { in.Password2 = "different1" },
	}
	for field, mutate := range cases {
		in := validRegister()
		mutate(&in)
		_, _, err := env.users.Register(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, strings.TrimSpace(field), verr.Field)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.users.Register(validRegister())
	require.NoError(t, err)

	_, _, err = env.users.Register(validRegister())
	assert.ErrorIs(t, err, ErrConflict)

	in := validRegister()
	in.Username = "ada2"
	_, _, err = env.users.Register(in)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateAccount(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.db, "", "A", "B", "")
	other := testutil.CreateUser(t, env.db, "", "", "", "")

	_, err := env.users.UpdateAccount(u.ID, AccountInput{FirstName: "A", LastName: "B", Email: other.Email})
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := env.users.UpdateAccount(u.ID, AccountInput{
		FirstName: "Alan",
		LastName:  "Kay",
		Email:     u.Email,
		Bio:       " objects ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alan Kay", updated.DisplayName())
	require.NotNil(t, updated.Profile)
	assert.Equal(t, "objects", updated.Profile.Bio)

	_, err = env.users.UpdateAccount(u.ID+100, AccountInput{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccountCascades(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")
	post := testutil.CreatePost(t, env.db, a.ID, "bye")

	_, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	_, err = env.reactions.Toggle(b.ID, post.ID, "SAD")
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteAccount(a.ID))
	assert.ErrorIs(t, env.users.DeleteAccount(a.ID), ErrNotFound)

	for _, m := range []interface{}{&model.Connection{}, &model.Post{}, &model.Reaction{}, &model.Profile{}} {
		var n int64
		require.NoError(t, env.db.Model(m).Count(&n).Error)
		if _, ok := m.(*model.Profile); ok {
			assert.Equal(t, int64(1), n)
			continue
		}
		assert.Zero(t, n)
	}
}
