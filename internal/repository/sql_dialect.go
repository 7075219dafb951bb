package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

func likeOperatorByDialect(dialect string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}

// containsCondition 构建大小写不敏感的子串匹配条件，数值列按文本匹配。
func containsCondition(dialect, column string) string {
	return fmt.Sprintf("CAST(%s AS TEXT) %s ? ESCAPE '\\'", column, likeOperatorByDialect(dialect))
}

// containsArg 转义 LIKE 通配符并包裹 %。
func containsArg(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(value) + "%"
}

// orderClause 生成排序子句，order 仅接受 asc/desc。
func orderClause(column, order string) string {
	if strings.EqualFold(strings.TrimSpace(order), "desc") {
		return column + " desc"
	}
	return column + " asc"
}

// applyPagination 应用分页参数，limit 非正时不分页。
func applyPagination(query *gorm.DB, page, limit int) *gorm.DB {
	if query == nil || limit <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(limit).Offset((page - 1) * limit)
}
