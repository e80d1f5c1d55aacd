package models

import (
	"errors"
	"net/http"
)

var ErrNotFound = errors.New("not found")

// AppError is the single error kind surfaced to clients. The centralized
// error handler renders it as {"status":"Error","message":...}.
type AppError struct {
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(message string, statusCode int) *AppError {
	return &AppError{
		Message:    message,
		StatusCode: statusCode,
	}
}

// ErrNotShopOwner rejects any requester whose shop does not own the product,
// Admins included.
var ErrNotShopOwner = NewAppError("you are not from the shop that owns this product", http.StatusBadRequest)
