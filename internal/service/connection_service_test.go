package service

import (
	"fmt"
	"testing"

	"pro-network/internal/model"
	"pro-network/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countPairRows(t *testing.T, env *testEnv, a, b uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&model.Connection{}).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		Count(&n).Error)
	return n
}

func TestSendRequestTwiceKeepsSinglePendingRow(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	first, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeSent, first.Outcome)

	second, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeAlreadySent, second.Outcome)
	assert.Equal(t, first.Connection.ID, second.Connection.ID)

	assert.Equal(t, int64(1), countPairRows(t, env, a.ID, b.ID))
	assert.Equal(t, model.ConnectionPending, second.Connection.Status)

	// 只有新建时通知接收方
	events := env.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, NotificationEvent{To: b.ID, From: a.ID, Type: model.NotificationConnectionRequest}, events[0])
}

func TestSendRequestRetriesAfterConcurrentInsert(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	// b 几乎同时向 a 发送请求
	interleaveWrite(t, env.db, "connection", func(tx *gorm.DB) error {
		return tx.Create(model.NewConnection(b.ID, a.ID)).Error
	})

	res, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeAlreadyReceived, res.Outcome)
	assert.Equal(t, b.ID, res.Connection.FromUserID)
	assert.Equal(t, int64(1), countPairRows(t, env, a.ID, b.ID))
	assert.Empty(t, env.notifier.Events())
}

func TestSendRequestRetriesAfterConcurrentSameDirection(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	interleaveWrite(t, env.db, "connection", func(tx *gorm.DB) error {
		return tx.Create(model.NewConnection(a.ID, b.ID)).Error
	})

	res, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeAlreadySent, res.Outcome)
	assert.Equal(t, int64(1), countPairRows(t, env, a.ID, b.ID))
}

func TestSendRequestToSelf(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")

	_, err := env.connections.SendRequest(a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestSendRequestUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")

	_, err := env.connections.SendRequest(a.ID, a.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptOnlyByRecipient(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	res, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	id := res.Connection.ID

	_, err = env.connections.Accept(a.ID, id)
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := env.connections.Accept(b.ID, id)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionAccepted, c.Status)

	// 已接受后不能再次接受或拒绝
	_, err = env.connections.Accept(b.ID, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.connections.Reject(b.ID, id)
	assert.ErrorIs(t, err, ErrNotFound)

	events := env.notifier.Events()
	require.Len(t, events, 2)
	assert.Equal(t, NotificationEvent{To: a.ID, From: b.ID, Type: model.NotificationConnectionAccepted}, events[1])
}

func TestAcceptUnknownRequest(t *testing.T) {
	env := newTestEnv(t)
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	_, err := env.connections.Accept(b.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectThenResend(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	res, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)

	_, err = env.connections.Reject(a.ID, res.Connection.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rejected, err := env.connections.Reject(b.ID, res.Connection.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionRejected, rejected.Status)

	again, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeResent, again.Outcome)
	assert.Equal(t, model.ConnectionPending, again.Connection.Status)
	assert.NotEqual(t, res.Connection.ID, again.Connection.ID)
	assert.Equal(t, a.ID, again.Connection.FromUserID)
	assert.Equal(t, int64(1), countPairRows(t, env, a.ID, b.ID))
}

func TestCancelOnlyBySender(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	res, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, env.connections.Cancel(b.ID, res.Connection.ID), ErrNotFound)
	require.NoError(t, env.connections.Cancel(a.ID, res.Connection.ID))
	assert.Equal(t, int64(0), countPairRows(t, env, a.ID, b.ID))
	assert.ErrorIs(t, env.connections.Cancel(a.ID, res.Connection.ID), ErrNotFound)

	// 撤回后可以重新发送
	again, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeSent, again.Outcome)
}

func TestRemoveAcceptedConnection(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")
	outsider := testutil.CreateUser(t, env.db, "", "", "", "")

	res, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	id := res.Connection.ID

	// 待处理的请求不能删除
	_, err = env.connections.Remove(a.ID, id)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.connections.Accept(b.ID, id)
	require.NoError(t, err)

	list, err := env.connections.ListAccepted(a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].User.ID)

	// 非参与方删除时静默忽略
	removed, err := env.connections.Remove(outsider.ID, id)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, int64(1), countPairRows(t, env, a.ID, b.ID))

	removed, err = env.connections.Remove(b.ID, id)
	require.NoError(t, err)
	assert.True(t, removed)

	for _, u := range []uint{a.ID, b.ID} {
		list, err := env.connections.ListAccepted(u)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

func TestConnectionScenario(t *testing.T) {
	env := newTestEnv(t)
	u1 := testutil.CreateUser(t, env.db, "", "", "", "")
	u2 := testutil.CreateUser(t, env.db, "", "", "", "")

	res, err := env.connections.SendRequest(u1.ID, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeSent, res.Outcome)
	assert.Equal(t, u1.ID, res.Connection.FromUserID)
	assert.Equal(t, u2.ID, res.Connection.ToUserID)

	reverse, err := env.connections.SendRequest(u2.ID, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeAlreadyReceived, reverse.Outcome)
	assert.Equal(t, int64(1), countPairRows(t, env, u1.ID, u2.ID))

	accepted, err := env.connections.Accept(u2.ID, res.Connection.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionAccepted, accepted.Status)

	again, err := env.connections.SendRequest(u1.ID, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, SendOutcomeAlreadyConnected, again.Outcome)
}

func TestBlockedPairIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")

	c := model.NewConnection(b.ID, a.ID)
	c.Status = model.ConnectionBlocked
	require.NoError(t, env.db.Create(c).Error)

	for _, pair := range [][2]uint{{a.ID, b.ID}, {b.ID, a.ID}} {
		_, err := env.connections.SendRequest(pair[0], pair[1])
		assert.ErrorIs(t, err, ErrBlocked)
	}
	_, err := env.connections.Accept(a.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var stored model.Connection
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, model.ConnectionBlocked, stored.Status)
	assert.Empty(t, env.notifier.Events())
}

func TestPendingLists(t *testing.T) {
	env := newTestEnv(t)
	a := testutil.CreateUser(t, env.db, "", "", "", "")
	b := testutil.CreateUser(t, env.db, "", "", "", "")
	c := testutil.CreateUser(t, env.db, "", "", "", "")

	_, err := env.connections.SendRequest(a.ID, b.ID)
	require.NoError(t, err)
	_, err = env.connections.SendRequest(c.ID, a.ID)
	require.NoError(t, err)

	sent, err := env.connections.ListPendingSent(a.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, b.ID, sent[0].User.ID)

	received, err := env.connections.ListPendingReceived(a.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, c.ID, received[0].User.ID)

	accepted, err := env.connections.ListAccepted(a.ID)
	require.NoError(t, err)
	assert.Empty(t, accepted)
}

func TestSearchCandidatesExcludesRelatedUsers(t *testing.T) {
	env := newTestEnv(t)
	me := testutil.CreateUser(t, env.db, "searcher_me", "Grace", "Hopper", "compilers")
	pending := testutil.CreateUser(t, env.db, "", "Graham", "Pending", "")
	accepted := testutil.CreateUser(t, env.db, "", "Grant", "Accepted", "")
	rejected := testutil.CreateUser(t, env.db, "", "Gray", "Rejected", "")
	byBio := testutil.CreateUser(t, env.db, "", "Alan", "Turing", "Loves GRAph theory")
	other := testutil.CreateUser(t, env.db, "", "Linus", "Torvalds", "kernels")

	_, err := env.connections.SendRequest(me.ID, pending.ID)
	require.NoError(t, err)
	res, err := env.connections.SendRequest(accepted.ID, me.ID)
	require.NoError(t, err)
	_, err = env.connections.Accept(me.ID, res.Connection.ID)
	require.NoError(t, err)
	res, err = env.connections.SendRequest(me.ID, rejected.ID)
	require.NoError(t, err)
	_, err = env.connections.Reject(rejected.ID, res.Connection.ID)
	require.NoError(t, err)

	users, err := env.connections.SearchCandidates("  gra ", me.ID)
	require.NoError(t, err)
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []uint{rejected.ID, byBio.ID}, ids)
	assert.NotContains(t, ids, other.ID)

	users, err = env.connections.SearchCandidates("   ", me.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSearchCandidatesAppliesCapAfterExclusion(t *testing.T) {
	env := newTestEnv(t)
	me := testutil.CreateUser(t, env.db, "", "", "", "")
	svc := NewConnectionService(env.connections.conns, env.connections.users, nil, 3)

	// 先创建的三个用户都与调用者有关系，截取前排除它们后仍应返回3个
	for i := 0; i < 3; i++ {
		u := testutil.CreateUser(t, env.db, fmt.Sprintf("match_rel_%d", i), "", "", "")
		_, err := svc.SendRequest(me.ID, u.ID)
		require.NoError(t, err)
	}
	var free []uint
	for i := 0; i < 4; i++ {
		u := testutil.CreateUser(t, env.db, fmt.Sprintf("match_free_%d", i), "", "", "")
		free = append(free, u.ID)
	}

	users, err := svc.SearchCandidates("match_", me.ID)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, u := range users {
		assert.Equal(t, free[i], u.ID)
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	env := newTestEnv(t)
	me := testutil.CreateUser(t, env.db, "", "", "", "")
	testutil.CreateUser(t, env.db, "plain", "", "", "")
	pct := testutil.CreateUser(t, env.db, "", "", "", "100% remote")

	users, err := env.connections.SearchCandidates("%", me.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, pct.ID, users[0].ID)

	users, err = env.connections.SearchCandidates("_", me.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSearchFoldsAccentedCase(t *testing.T) {
	env := newTestEnv(t)
	me := testutil.CreateUser(t, env.db, "", "", "", "")
	elodie := testutil.CreateUser(t, env.db, "", "Élodie", "Durand", "")

	users, err := env.connections.SearchCandidates("élodie", me.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, elodie.ID, users[0].ID)
}
