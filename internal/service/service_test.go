package service

import (
	"sync"
	"testing"
	"time"

	"pro-network/config"
	"pro-network/internal/repository"
	"pro-network/internal/testutil"
	"pro-network/pkg/jwt"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotifier 记录通知事件
type recordingNotifier struct {
	mu     sync.Mutex
	events []NotificationEvent
}

func (n *recordingNotifier) Notify(ev NotificationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) Events() []NotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NotificationEvent(nil), n.events...)
}

type testEnv struct {
	db          *gorm.DB
	notifier    *recordingNotifier
	users       *UserService
	connections *ConnectionService
	reactions   *ReactionService
	posts       *PostService
	profiles    *ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	notifier := &recordingNotifier{}
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test", ExpireTime: time.Hour, Issuer: "test"})

	connections := NewConnectionService(repository.NewConnectionRepository(db), userRepo, notifier, 20)
	reactions := NewReactionService(repository.NewReactionRepository(db), postRepo, notifier)
	return &testEnv{
		db:          db,
		notifier:    notifier,
		users:       NewUserService(userRepo, jwtSvc),
		connections: connections,
		reactions:   reactions,
		posts:       NewPostService(postRepo, userRepo, reactions, notifier, 10, 3),
		profiles:    NewProfileService(userRepo, repository.NewProfileRepository(db), connections),
	}
}

// interleaveWrite 模拟另一事务在读写之间插入同一记录：
// 第一次查询 table 为空后，在本事务内写入冲突记录，使随后的 Create 触发唯一索引冲突并回滚；
// 第二次查询前再次写入，相当于另一事务已提交。write 使用同一连接执行。
func interleaveWrite(t *testing.T, db *gorm.DB, table string, write func(tx *gorm.DB) error) {
	t.Helper()
	queries := 0
	inject := func(tx *gorm.DB) {
		if err := write(tx.Session(&gorm.Session{NewDB: true})); err != nil {
			tx.AddError(err)
		}
	}
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:interleave_before", func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		queries++
		if queries == 2 {
			inject(tx)
		}
	}))
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:interleave_after", func(tx *gorm.DB) {
		if tx.Statement.Table == table && queries == 1 {
			inject(tx)
		}
	}))
}
