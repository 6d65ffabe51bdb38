package service

import (
	"strings"

	"pro-network/internal/model"
	"pro-network/internal/repository"
)

// FeedItem 动态流中的一条动态
type FeedItem struct {
	Post      *model.Post
	Reactions ReactionSummary
}

// FeedStats 动态流侧边栏统计
type FeedStats struct {
	TotalPosts int64 `json:"total_posts"`
	TotalUsers int64 `json:"total_users"`
}

// Feed 一页动态流
type Feed struct {
	Items          []FeedItem
	Page           int
	PageSize       int
	HasNext        bool
	Stats          FeedStats
	SuggestedUsers []*model.User
}

// PostService 动态、评论与动态流
type PostService struct {
	posts     *repository.PostRepository
	users     *repository.UserRepository
	reactions *ReactionService
	notifier  Notifier
	pageSize  int
	suggested int
}

// NewPostService 创建动态服务
func NewPostService(posts *repository.PostRepository, users *repository.UserRepository, reactions *ReactionService, notifier Notifier, pageSize, suggested int) *PostService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if suggested < 0 {
		suggested = 0
	}
	return &PostService{
		posts:     posts,
		users:     users,
		reactions: reactions,
		notifier:  notifier,
		pageSize:  pageSize,
		suggested: suggested,
	}
}

// CreatePost 发布动态
func (s *PostService) CreatePost(authorID uint, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "内容不能为空")
	}
	post := &model.Post{AuthorID: authorID, Content: content}
	if err := s.posts.Create(post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(post.ID)
}

// EditPost 作者修改动态，非作者返回 ErrNotFound
func (s *PostService) EditPost(authorID, postID uint, content string) (*model.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "内容不能为空")
	}
	rows, err := s.posts.UpdateContent(postID, authorID, content)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.posts.GetByID(postID)
}

// DeletePost 作者删除动态，非作者返回 ErrNotFound
func (s *PostService) DeletePost(authorID, postID uint) error {
	rows, err := s.posts.Delete(postID, authorID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment 评论动态，并通知动态作者
func (s *PostService) AddComment(authorID, postID uint, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "内容不能为空")
	}
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, notFound(err)
	}

	comment := &model.Comment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.posts.CreateComment(comment); err != nil {
		return nil, err
	}
	if author, err := s.users.GetByID(authorID); err == nil {
		comment.Author = author
	}

	if post.AuthorID != authorID {
		s.notifier.Notify(NotificationEvent{
			To:        post.AuthorID,
			From:      authorID,
			Type:      model.NotificationComment,
			PostID:    &post.ID,
			CommentID: &comment.ID,
		})
	}
	return comment, nil
}

// DeleteComment 作者删除评论，非作者返回 ErrNotFound
func (s *PostService) DeleteComment(authorID, commentID uint) error {
	rows, err := s.posts.DeleteComment(commentID, authorID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Feed 全部动态按时间倒序分页（page 从1开始），附带反应汇总、统计与推荐用户
func (s *PostService) Feed(viewerID uint, page int) (*Feed, error) {
	if page < 1 {
		page = 1
	}
	// 多取一条用于判断是否有下一页
	posts, err := s.posts.List(s.pageSize+1, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}
	hasNext := len(posts) > s.pageSize
	if hasNext {
		posts = posts[:s.pageSize]
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	summaries, err := s.reactions.SummariesFor(ids, viewerID)
	if err != nil {
		return nil, err
	}

	feed := &Feed{
		Items:    make([]FeedItem, 0, len(posts)),
		Page:     page,
		PageSize: s.pageSize,
		HasNext:  hasNext,
	}
	for _, p := range posts {
		feed.Items = append(feed.Items, FeedItem{Post: p, Reactions: summaries[p.ID]})
	}

	if feed.Stats.TotalPosts, err = s.posts.Count(); err != nil {
		return nil, err
	}
	if feed.Stats.TotalUsers, err = s.users.Count(); err != nil {
		return nil, err
	}
	if feed.SuggestedUsers, err = s.users.ListExcept(viewerID, s.suggested); err != nil {
		return nil, err
	}
	return feed, nil
}
