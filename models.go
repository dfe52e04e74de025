package main

type AddEntryRequest struct {
	Symbol  string `json:"symbol" binding:"required"`
	Company string `json:"company" binding:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type WatchlistResponse struct {
	Count   int             `json:"count"`
	Entries []EnrichedQuote `json:"entries"`
}

type OperationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Symbol  string `json:"symbol,omitempty"`
}
