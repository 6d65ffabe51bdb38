package service

import (
	"testing"

	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func reactionRows(t *testing.T, env *testEnv, userID, postID uint) []model.Reaction {
	t.Helper()
	var rows []model.Reaction
	require.NoError(t, env.db.Where("user_id = ? AND post_id = ?", userID, postID).Find(&rows).Error)
	return rows
}

func TestToggleSameKindIsInvolutive(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "", "", "", "")
	u := testutil.CreateUser(t, env.db, "", "", "", "")
	post := testutil.CreatePost(t, env.db, author.ID, "hello")

	res, err := env.reactions.Toggle(u.ID, post.ID, "LIKE")
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, res.Action)
	assert.Equal(t, int64(1), res.Summary.Total)
	assert.Equal(t, model.ReactionLike, res.Summary.UserKind)

	res, err = env.reactions.Toggle(u.ID, post.ID, "like")
	require.NoError(t, err)
	assert.Equal(t, ToggleRemoved, res.Action)
	assert.Equal(t, int64(0), res.Summary.Total)
	assert.Empty(t, res.Summary.Counts)
	assert.Empty(t, res.Summary.UserKind)

	assert.Empty(t, reactionRows(t, env, u.ID, post.ID))

	// 只有添加时通知作者
	events := env.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, author.ID, events[0].To)
	assert.Equal(t, model.NotificationLike, events[0].Type)
	require.NotNil(t, events[0].PostID)
	assert.Equal(t, post.ID, *events[0].PostID)
}

func TestToggleDifferentKindUpdates(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "", "", "", "")
	u := testutil.CreateUser(t, env.db, "", "", "", "")
	post := testutil.CreatePost(t, env.db, author.ID, "hello")

	res, err := env.reactions.Toggle(u.ID, post.ID, "LIKE")
	require.NoError(t, err)
	assert.Equal(t, ToggleAdded, res.Action)

	res, err = env.reactions.Toggle(u.ID, post.ID, "LOVE")
	require.NoError(t, err)
	assert.Equal(t, ToggleUpdated, res.Action)
	assert.Equal(t, int64(1), res.Summary.Total)
	assert.Equal(t, []repository.KindCount{{Kind: model.ReactionLove, Count: 1}}, res.Summary.Counts)

	rows := reactionRows(t, env, u.ID, post.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ReactionLove, rows[0].Kind)
}

func TestToggleRetriesAfterConcurrentInsert(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "", "", "", "")
	u := testutil.CreateUser(t, env.db, "", "", "", "")
	post := testutil.CreatePost(t, env.db, author.ID, "hello")

	// 同一用户的另一个请求先写入了 LOVE
	interleaveWrite(t, env.db, "reaction", func(tx *gorm.DB) error {
		return tx.Create(&model.Reaction{UserID: u.ID, PostID: post.ID, Kind: model.ReactionLove}).Error
	})

	res, err := env.reactions.Toggle(u.ID, post.ID, "LIKE")
	require.NoError(t, err)
	assert.Equal(t, ToggleUpdated, res.Action)
	assert.Equal(t, int64(1), res.Summary.Total)
	assert.Equal(t, model.ReactionLike, res.Summary.UserKind)

	rows := reactionRows(t, env, u.ID, post.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, model.ReactionLike, rows[0].Kind)
	assert.Empty(t, env.notifier.Events())
}

func TestToggleDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "", "", "", "")
	post := testutil.CreatePost(t, env.db, author.ID, "hello")

	res, err := env.reactions.Toggle(author.ID, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.ReactionLike, res.Summary.UserKind)
	// 给自己的动态点赞不通知
	assert.Empty(t, env.notifier.Events())

	_, err = env.reactions.Toggle(author.ID, post.ID, "meh")
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)

	_, err = env.reactions.Toggle(author.ID, post.ID+100, "LIKE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountsForOrdersByCountThenKind(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "", "", "", "")
	post := testutil.CreatePost(t, env.db, author.ID, "hello")

	kinds := []string{"WOW", "SAD", "SAD", "LIKE", "WOW", "ANGRY"}
	var viewer *model.User
	for _, k := range kinds {
		u := testutil.CreateUser(t, env.db, "", "", "", "")
		_, err := env.reactions.Toggle(u.ID, post.ID, k)
		require.NoError(t, err)
		viewer = u
	}

	summary, err := env.reactions.CountsFor(post.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), summary.Total)
	assert.Equal(t, []repository.KindCount{
		{Kind: model.ReactionWow, Count: 2},
		{Kind: model.ReactionSad, Count: 2},
		{Kind: model.ReactionLike, Count: 1},
		{Kind: model.ReactionAngry, Count: 1},
	}, summary.Counts)
	assert.Equal(t, model.ReactionAngry, summary.UserKind)

	anon, err := env.reactions.CountsFor(post.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, anon.UserKind)
	assert.Equal(t, summary.Counts, anon.Counts)
}

func TestSummariesForMatchesCountsFor(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "", "", "", "")
	u := testutil.CreateUser(t, env.db, "", "", "", "")
	p1 := testutil.CreatePost(t, env.db, author.ID, "one")
	p2 := testutil.CreatePost(t, env.db, author.ID, "two")

	_, err := env.reactions.Toggle(u.ID, p1.ID, "FUNNY")
	require.NoError(t, err)
	_, err = env.reactions.Toggle(author.ID, p1.ID, "LIKE")
	require.NoError(t, err)

	all, err := env.reactions.SummariesFor([]uint{p1.ID, p2.ID}, u.ID)
	require.NoError(t, err)

	single, err := env.reactions.CountsFor(p1.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, *single, all[p1.ID])
	assert.Equal(t, int64(0), all[p2.ID].Total)
	assert.Empty(t, all[p2.ID].UserKind)
}

func TestBuildSummarySkipsEmptyCounts(t *testing.T) {
	s := buildSummary([]repository.KindCount{
		{Kind: model.ReactionLove, Count: 0},
		{Kind: model.ReactionLike, Count: 3},
	})
	assert.Equal(t, int64(3), s.Total)
	assert.Len(t, s.Counts, 1)
}
