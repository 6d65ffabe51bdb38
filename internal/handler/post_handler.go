package handler

import (
	"pro-network/internal/service"
	"pro-network/pkg/jwt"
	"pro-network/pkg/response"

	"github.com/gin-gonic/gin"
)

// PostHandler 动态、评论与反应
type PostHandler struct {
	posts     *service.PostService
	reactions *service.ReactionService
}

// NewPostHandler 创建PostHandler实例
func NewPostHandler(posts *service.PostService, reactions *service.ReactionService) *PostHandler {
	return &PostHandler{posts: posts, reactions: reactions}
}

type contentRequest struct {
	Content string `json:"content" binding:"required"`
}

// feedItem 动态流中的一条动态
type feedItem struct {
	*response.PostInfo
	Reactions service.ReactionSummary `json:"reactions"`
}

// Feed 动态流
func (h *PostHandler) Feed(c *gin.Context) {
	feed, err := h.posts.Feed(jwt.GetUserID(c), queryPage(c))
	if err != nil {
		handleError(c, err)
		return
	}
	items := make([]feedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, feedItem{PostInfo: response.FilterPostInfo(it.Post), Reactions: it.Reactions})
	}
	response.Success(c, gin.H{
		"posts":           items,
		"page":            feed.Page,
		"page_size":       feed.PageSize,
		"has_next":        feed.HasNext,
		"stats":           feed.Stats,
		"suggested_users": response.FilterUserList(feed.SuggestedUsers),
	})
}

// Create 发布动态
func (h *PostHandler) Create(c *gin.Context) {
	var r contentRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.posts.CreatePost(jwt.GetUserID(c), r.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, response.FilterPostInfo(post))
}

// Edit 修改动态
func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	var r contentRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.posts.EditPost(jwt.GetUserID(c), id, r.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, response.FilterPostInfo(post))
}

// Delete 删除动态
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	if err := h.posts.DeletePost(jwt.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "动态已删除", nil)
}

// AddComment 评论动态
func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	var r contentRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.posts.AddComment(jwt.GetUserID(c), id, r.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, response.FilterCommentInfo(comment))
}

// DeleteComment 删除评论
func (h *PostHandler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "comment_id")
	if !ok {
		return
	}
	if err := h.posts.DeleteComment(jwt.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	response.SuccessWithMessage(c, "评论已删除", nil)
}

// reactionResponse 反应接口响应
type reactionResponse struct {
	Action string `json:"action,omitempty"`
	service.ReactionSummary
}

// ToggleReaction 切换反应，kind 可来自 JSON、表单或查询参数，缺省为 LIKE
func (h *PostHandler) ToggleReaction(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	var r struct {
		Kind string `json:"kind" form:"kind"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&r); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	if r.Kind == "" {
		r.Kind = c.Query("kind")
	}

	res, err := h.reactions.Toggle(jwt.GetUserID(c), id, r.Kind)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, reactionResponse{Action: string(res.Action), ReactionSummary: res.Summary})
}

// Reactions 动态的反应汇总
func (h *PostHandler) Reactions(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	summary, err := h.reactions.PostSummary(id, jwt.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, reactionResponse{ReactionSummary: *summary})
}
