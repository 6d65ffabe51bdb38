package service

import (
	"fmt"
	"sort"

	"pro-network/internal/model"
	"pro-network/internal/repository"
	"pro-network/pkg/metrics"
)

// ToggleAction 切换反应后实际执行的动作
type ToggleAction string

const (
	ToggleAdded   ToggleAction = "added"
	ToggleRemoved ToggleAction = "removed"
	ToggleUpdated ToggleAction = "updated"
)

// ReactionSummary 动态的反应汇总
// Counts 按数量降序，数量相同时按 model.ReactionKinds 的顺序
type ReactionSummary struct {
	Total    int64                  `json:"total"`
	Counts   []repository.KindCount `json:"counts"`
	UserKind model.ReactionKind     `json:"user_kind,omitempty"`
}

// ToggleResult 切换结果
type ToggleResult struct {
	Action  ToggleAction    `json:"action"`
	Summary ReactionSummary `json:"summary"`
}

// ReactionService 反应切换与统计
type ReactionService struct {
	reactions *repository.ReactionRepository
	posts     *repository.PostRepository
	notifier  Notifier
}

// NewReactionService 创建反应服务
func NewReactionService(reactions *repository.ReactionRepository, posts *repository.PostRepository, notifier Notifier) *ReactionService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReactionService{reactions: reactions, posts: posts, notifier: notifier}
}

// Toggle 切换用户对动态的反应：无记录则添加，同类型则删除，不同类型则修改
func (s *ReactionService) Toggle(userID, postID uint, kindInput string) (*ToggleResult, error) {
	kind, ok := model.ParseReactionKind(kindInput)
	if !ok {
		return nil, invalid("kind", fmt.Sprintf("未知的反应类型 %q", kindInput))
	}

	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, notFound(err)
	}

	var action ToggleAction
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		action, err = s.toggleOnce(userID, postID, kind)
		if !retryableWrite(err) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("切换反应失败: %w", err)
	}
	metrics.ReactionToggles.WithLabelValues(string(action)).Inc()

	if action == ToggleAdded && post.AuthorID != userID {
		s.notifier.Notify(NotificationEvent{
			To:     post.AuthorID,
			From:   userID,
			Type:   model.NotificationLike,
			PostID: &post.ID,
		})
	}

	summary, err := s.CountsFor(postID, userID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Action: action, Summary: *summary}, nil
}

func (s *ReactionService) toggleOnce(userID, postID uint, kind model.ReactionKind) (ToggleAction, error) {
	var action ToggleAction
	err := s.reactions.Transaction(func(tx *repository.ReactionRepository) error {
		existing, err := tx.FindByUserAndPost(userID, postID)
		if err != nil {
			return err
		}
		switch {
		case existing == nil:
			action = ToggleAdded
			return tx.Create(&model.Reaction{UserID: userID, PostID: postID, Kind: kind})
		case existing.Kind == kind:
			action = ToggleRemoved
			return tx.Delete(existing.ID)
		default:
			action = ToggleUpdated
			return tx.UpdateKind(existing.ID, kind)
		}
	})
	return action, err
}

// CountsFor 动态的反应汇总，viewerID 为0时不返回 UserKind
func (s *ReactionService) CountsFor(postID, viewerID uint) (*ReactionSummary, error) {
	counts, err := s.reactions.CountByPost(postID)
	if err != nil {
		return nil, err
	}
	summary := buildSummary(counts)

	if viewerID != 0 {
		r, err := s.reactions.FindByUserAndPost(viewerID, postID)
		if err != nil {
			return nil, err
		}
		if r != nil {
			summary.UserKind = r.Kind
		}
	}
	return &summary, nil
}

// SummariesFor 批量获取多条动态的反应汇总（动态流使用）
func (s *ReactionService) SummariesFor(postIDs []uint, viewerID uint) (map[uint]ReactionSummary, error) {
	counts, err := s.reactions.CountByPosts(postIDs)
	if err != nil {
		return nil, err
	}
	kinds := map[uint]model.ReactionKind{}
	if viewerID != 0 {
		if kinds, err = s.reactions.KindsByUser(viewerID, postIDs); err != nil {
			return nil, err
		}
	}

	result := make(map[uint]ReactionSummary, len(postIDs))
	for _, id := range postIDs {
		summary := buildSummary(counts[id])
		summary.UserKind = kinds[id]
		result[id] = summary
	}
	return result, nil
}

func buildSummary(counts []repository.KindCount) ReactionSummary {
	sorted := make([]repository.KindCount, 0, len(counts))
	var total int64
	for _, kc := range counts {
		if kc.Count <= 0 {
			continue
		}
		total += kc.Count
		sorted = append(sorted, kc)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Kind.Rank() < sorted[j].Kind.Rank()
	})
	return ReactionSummary{Total: total, Counts: sorted}
}

// PostSummary 动态存在时返回反应汇总，否则 ErrNotFound
func (s *ReactionService) PostSummary(postID, viewerID uint) (*ReactionSummary, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		return nil, notFound(err)
	}
	return s.CountsFor(postID, viewerID)
}
