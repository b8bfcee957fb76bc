package model

import (
	"gorm.io/gorm"
)

const (
	ResultsPerPage = 20
	maxPageSize    = 100
)

// PageSize returns pageSize bounded to the accepted range, ResultsPerPage if it is not positive
func PageSize(pageSize int) int {
	switch {
	case pageSize > maxPageSize:
		return maxPageSize
	case pageSize <= 0:
		return ResultsPerPage
	}
	return pageSize
}

// Paginate limits a query to the requested page. Pages start at 1.
func Paginate(page int, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		pageSize = PageSize(pageSize)
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
