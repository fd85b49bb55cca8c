package response

// BuildPagination assembles paging metadata from a total row count.
func BuildPagination(page, pageSize int, total int64) Pagination {
	var totalPage int64
	if pageSize > 0 {
		totalPage = total / int64(pageSize)
		if total%int64(pageSize) != 0 {
			totalPage++
		}
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
