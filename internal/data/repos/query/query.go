// Package query holds the filter fragments shared by the repos.
package query

import (
	"gorm.io/gorm"

	"github.com/yungbote/quidz-backend/internal/pkg/period"
)

const MaxLimit = 500

// Unpaged as a limit returns every matching row. Aggregations and exports use
// it; request paging never does.
const Unpaged = -1

// InPeriod restricts expr to the calendar days of p. A nil period is a no-op.
func InPeriod(q *gorm.DB, expr string, p *period.Period) *gorm.DB {
	if p == nil {
		return q
	}
	from, until := p.Bounds()
	return q.Where(expr+" >= ? AND "+expr+" < ?", from, until)
}

// Page applies limit and offset. Zero means MaxLimit and Unpaged means no
// limit at all.
func Page(q *gorm.DB, limit, offset int) *gorm.DB {
	switch {
	case limit < 0:
	case limit == 0 || limit > MaxLimit:
		q = q.Limit(MaxLimit)
	default:
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}
