package dto

import "github.com/aqwal-app/aqwal/internal/domain"

// QuoteResponse is the external representation of one quote.
type QuoteResponse struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

// QuoteListResponse is the response of the quote listing endpoint.
type QuoteListResponse struct {
	Items []QuoteResponse `json:"items"`
	Total int             `json:"total"`
}

// ShareResponse carries the ready-to-copy share text for a quote.
type ShareResponse struct {
	Text string `json:"text"`
}

// CreateQuoteRequest is the body of the quote creation endpoint.
type CreateQuoteRequest struct {
	Text   string `json:"text" validate:"required,notempty"`
	Author string `json:"author"`
}

// NewQuoteResponse converts a domain quote to its external shape.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{ID: q.ID, Text: q.Text, Author: q.Author}
}

// NewQuoteListResponse converts a domain quote list. Total is the
// number of items in this response.
func NewQuoteListResponse(quotes []domain.Quote) QuoteListResponse {
	items := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		items = append(items, NewQuoteResponse(q))
	}

	return QuoteListResponse{Items: items, Total: len(items)}
}
