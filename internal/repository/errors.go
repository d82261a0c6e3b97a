package repository

import "errors"

var (
	ErrRunNotFound         = errors.New("ingestion run not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrRunAlreadyExists    = errors.New("ingestion run already exists")
)
