package cart

import (
	"github.com/shopspring/decimal"
)

// Line 购物车中单个商品的记录
// RemoteID 为空表示该行尚未被远端确认
type Line struct {
	RemoteID        string          `json:"remote_id,omitempty"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImage    string          `json:"product_image"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// WithQuantity 返回调整数量后的新行，小计同步重算
func (l Line) WithQuantity(quantity int) Line {
	l.Quantity = quantity
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return l
}

// WithRemoteID 返回绑定远端 ID 的新行
func (l Line) WithRemoteID(remoteID string) Line {
	l.RemoteID = remoteID
	return l
}

// Synced 是否已被远端确认
func (l Line) Synced() bool {
	return l.RemoteID != ""
}

// Consistent 小计是否与单价和数量一致
func (l Line) Consistent() bool {
	return l.Subtotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Snapshot 某一时刻的购物车内容，构造后不可修改
type Snapshot struct {
	lines []Line
}

// NewSnapshot 复制传入的行构造快照
func NewSnapshot(lines ...Line) Snapshot {
	if len(lines) == 0 {
		return Snapshot{}
	}
	copied := make([]Line, len(lines))
	copy(copied, lines)
	return Snapshot{lines: copied}
}

// Lines 返回行的副本
func (s Snapshot) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len 行数
func (s Snapshot) Len() int {
	return len(s.lines)
}

// Empty 是否为空购物车
func (s Snapshot) Empty() bool {
	return len(s.lines) == 0
}

// Find 按商品查找行
func (s Snapshot) Find(productID string) (Line, bool) {
	for _, line := range s.lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

// ItemCount 商品件数合计（角标展示）
func (s Snapshot) ItemCount() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Equal 判断两个快照的行、顺序与数量完全一致
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.lines) != len(other.lines) {
		return false
	}
	for i := range s.lines {
		a, b := s.lines[i], other.lines[i]
		if a.RemoteID != b.RemoteID ||
			a.ProductID != b.ProductID ||
			a.ProductName != b.ProductName ||
			a.ProductImage != b.ProductImage ||
			a.Quantity != b.Quantity ||
			!a.UnitPrice.Equal(b.UnitPrice) ||
			!a.DiscountPercent.Equal(b.DiscountPercent) ||
			!a.Subtotal.Equal(b.Subtotal) {
			return false
		}
	}
	return true
}

func (s Snapshot) upsert(line Line) Snapshot {
	next := make([]Line, 0, len(s.lines)+1)
	replaced := false
	for _, existing := range s.lines {
		if existing.ProductID == line.ProductID {
			next = append(next, line)
			replaced = true
			continue
		}
		next = append(next, existing)
	}
	if !replaced {
		next = append(next, line)
	}
	return Snapshot{lines: next}
}

func (s Snapshot) remove(productID string) (Snapshot, bool) {
	next := make([]Line, 0, len(s.lines))
	removed := false
	for _, existing := range s.lines {
		if existing.ProductID == productID {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	if !removed {
		return s, false
	}
	return Snapshot{lines: next}, true
}
