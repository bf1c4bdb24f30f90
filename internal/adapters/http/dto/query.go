package dto

// DefaultLimit is the number of quotes returned when no limit is given.
const DefaultLimit = 100

// MaxLimit caps how many quotes one request can ask for.
const MaxLimit = 500

// ListQuotesQuery carries the query parameters of the quote listing
// endpoint. Q is matched as a case-sensitive substring against quote
// text and author; an empty Q matches everything.
type ListQuotesQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" validate:"omitempty,gte=1,lte=500"`
}

// GetLimit returns the limit with defaults and the cap applied.
func (q *ListQuotesQuery) GetLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}

	if q.Limit > MaxLimit {
		return MaxLimit
	}

	return q.Limit
}
