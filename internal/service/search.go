package service

import (
	"strings"

	"gorm.io/gorm"
)

// SearchCandidate 参与搜索匹配的用户字段
type SearchCandidate struct {
	ID        uint
	Username  string
	FirstName string
	LastName  string
	Bio       string
}

// CandidateFilter 用户搜索条件：名、姓、用户名、简介任一字段包含关键字（不区分大小写），且不在排除列表中
// Match 与 Scope 语义一致，前者用于内存判断，后者生成数据库查询
type CandidateFilter struct {
	Query      string
	ExcludeIDs []uint
}

func (f CandidateFilter) needle() string {
	return strings.ToLower(strings.TrimSpace(f.Query))
}

func (f CandidateFilter) excluded(id uint) bool {
	for _, x := range f.ExcludeIDs {
		if x == id {
			return true
		}
	}
	return false
}

// Match 判断候选用户是否满足条件
func (f CandidateFilter) Match(c SearchCandidate) bool {
	needle := f.needle()
	if needle == "" || f.excluded(c.ID) {
		return false
	}
	for _, field := range []string{c.FirstName, c.LastName, c.Username, c.Bio} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Scope 将条件应用到 user 表查询上
func (f CandidateFilter) Scope(db *gorm.DB) *gorm.DB {
	needle := f.needle()
	if needle == "" {
		return db.Where("1 = 0")
	}

	pattern := "%" + escapeLike(needle) + "%"
	cols := []string{"`user`.first_name", "`user`.last_name", "`user`.username", "COALESCE(profile.bio, '')"}
	conds := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		conds = append(conds, containsExpr(db.Dialector.Name(), col))
		args = append(args, pattern)
	}
	db = db.Joins("LEFT JOIN profile ON profile.user_id = `user`.id").
		Where("("+strings.Join(conds, " OR ")+")", args...)
	if len(f.ExcludeIDs) > 0 {
		db = db.Where("`user`.id NOT IN ?", f.ExcludeIDs)
	}
	return db
}

// containsExpr 小写后按字节比较的子串匹配
// mysql 的 _ci 排序规则会忽略重音，这里转成二进制比较；sqlite 的 lower 已在 pkg/db 中替换为 Unicode 版本
func containsExpr(dialect, col string) string {
	if dialect == "mysql" {
		return "CAST(LOWER(" + col + ") AS BINARY) LIKE CAST(? AS BINARY) ESCAPE '!'"
	}
	return "LOWER(" + col + ") LIKE ? ESCAPE '!'"
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike 转义 LIKE 通配符，配合 ESCAPE '!' 使用
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
