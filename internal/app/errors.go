package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrEmptyContent       = errors.New("content is empty")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrUnsupportedType    = errors.New("unsupported file type")
	ErrUploadNotFound     = errors.New("upload not found")
	ErrReelNotFound       = errors.New("reel not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrStorageWriteFailed = errors.New("storage write failed")
)
