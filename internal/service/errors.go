package service

import "errors"

var (
	ErrPostNotFound = errors.New("post not found")
	ErrTagNotFound  = errors.New("tag not found")
)
