package service

// Page selects a window of a listing. Number starts at 1.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps the requested page into range. A non-positive limit falls
// back to defaultLimit; limits above maxLimit are capped.
func NewPage(number, limit, defaultLimit, maxLimit int) Page {
	if number < 1 {
		number = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

type PageInfo struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
}

func newPageInfo(p Page, total int) PageInfo {
	return PageInfo{
		Page:    p.Number,
		Limit:   p.Limit,
		Total:   total,
		HasNext: p.Offset()+p.Limit < total,
	}
}
