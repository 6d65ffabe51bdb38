package service

import (
	"encoding/json"
	"sync"
	"testing"

	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePusher struct {
	mu   sync.Mutex
	sent map[uint][][]byte
}

func (p *capturePusher) SendToUser(userID uint, msg []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[uint][][]byte{}
	}
	p.sent[userID] = append(p.sent[userID], msg)
	return true
}

func TestNotificationLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	pusher := &capturePusher{}
	svc := NewNotificationService(repository.NewNotificationRepository(db), repository.NewUserRepository(db), pusher, 2)

	to := testutil.CreateUser(t, db, "", "", "", "")
	from := testutil.CreateUser(t, db, "", "Grace", "Hopper", "")
	post := testutil.CreatePost(t, db, to.ID, "hello")

	// 不给自己发通知
	n, err := svc.Create(NotificationEvent{To: to.ID, From: to.ID, Type: model.NotificationLike})
	require.NoError(t, err)
	assert.Nil(t, n)

	first, err := svc.Create(NotificationEvent{To: to.ID, From: from.ID, Type: model.NotificationLike, PostID: &post.ID})
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper 赞了你的动态", first.Message)
	svc.Notify(NotificationEvent{To: to.ID, From: from.ID, Type: model.NotificationConnectionRequest})
	svc.Notify(NotificationEvent{To: to.ID, From: from.ID, Type: model.NotificationConnectionAccepted})

	require.Len(t, pusher.sent[to.ID], 3)
	var pushed struct {
		Type string `json:"type"`
		Data struct {
			Type   string `json:"type"`
			PostID *uint  `json:"post_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(pusher.sent[to.ID][0], &pushed))
	assert.Equal(t, "notification", pushed.Type)
	assert.Equal(t, "LIKE", pushed.Data.Type)
	require.NotNil(t, pushed.Data.PostID)
	assert.Equal(t, post.ID, *pushed.Data.PostID)

	count, err := svc.UnreadCount(to.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	page1, total, err := svc.List(to.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page1, 2)
	assert.Equal(t, model.NotificationConnectionAccepted, page1[0].Type)
	require.NotNil(t, page1[0].FromUser)
	page2, _, err := svc.List(to.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, first.ID, page2[0].ID)

	// 只能标记自己的通知
	assert.ErrorIs(t, svc.MarkRead(from.ID, first.ID), ErrNotFound)
	require.NoError(t, svc.MarkRead(to.ID, first.ID))
	require.NoError(t, svc.MarkRead(to.ID, first.ID))
	count, err = svc.UnreadCount(to.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	marked, err := svc.MarkAllRead(to.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)
	count, err = svc.UnreadCount(to.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.JSONEq(t, `{"type":"unread_count","count":0}`, string(svc.WelcomeMessage(to.ID)))
}

func TestNotificationMessages(t *testing.T) {
	assert.Equal(t, "Ada 评论了你的动态", notificationMessage(model.NotificationComment, "Ada"))
	assert.Equal(t, "Ada 向你发送了连接请求", notificationMessage(model.NotificationConnectionRequest, "Ada"))
	assert.Equal(t, "Ada", notificationMessage("OTHER", "Ada"))
}
