package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKey 判断是否为唯一约束冲突，未开启错误翻译的驱动按错误信息识别
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// isNotFound 记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// parseID 解析正整数ID
func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// findByIDOrSlug 数字参数先按ID查找，找不到再按slug查找
//
// 传入的 db 可能带有 Preload 等链式条件，每次查询都在新会话上进行，避免ID条件带入slug查询
func findByIDOrSlug(db *gorm.DB, dest any, idOrSlug string) error {
	if id, ok := parseID(idOrSlug); ok {
		err := db.Session(&gorm.Session{}).First(dest, id).Error
		if err == nil || !isNotFound(err) {
			return err
		}
	}
	return db.Session(&gorm.Session{}).Where("slug = ?", idOrSlug).First(dest).Error
}

// 去掉首尾空白后的最小长度
const (
	minTitleLength = 3
	minNameLength  = 2
)

// trimmed 去掉首尾空白后再检查最小长度，绑定校验只看原始长度
func trimmed(value, field string, min int) (string, error) {
	v := strings.TrimSpace(value)
	if len([]rune(v)) < min {
		return "", Invalid("参数校验失败", map[string]any{field: fmt.Sprintf("长度不能小于%d", min)})
	}
	return v, nil
}

// uniqueIDs 去重并去掉0
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missingIDs 返回 want 中不在 found 里的ID，升序
func missingIDs(want, found []uint) []uint {
	exists := make(map[uint]struct{}, len(found))
	for _, id := range found {
		exists[id] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := exists[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// joinIDs 将ID列表格式化为 "1, 2, 3"
func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ", ")
}

// countRow 分组计数结果
type countRow struct {
	RefID uint
	N     int64
}

// countBy 按 column 分组统计 table 中 key 在 ids 内的行数
func countBy(db *gorm.DB, table, column string, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := db.Table(table).
		Select(fmt.Sprintf("%s AS ref_id, COUNT(*) AS n", column)).
		Where(fmt.Sprintf("%s IN ?", column), ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("统计%s失败: %w", table, err)
	}
	for _, r := range rows {
		counts[r.RefID] = r.N
	}
	return counts, nil
}
