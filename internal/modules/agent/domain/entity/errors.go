package entity

import "errors"

// 领域哨兵错误，供仓储与应用服务层判定
var (
	ErrStorage           = errors.New("storage failure")
	ErrInvalidTransition = errors.New("invalid action status transition")
	ErrActionExpired     = errors.New("action has expired")
	ErrUnknownReference  = errors.New("unknown action reference")
	ErrToolLoopExceeded  = errors.New("tool iteration limit exceeded")
	ErrSessionNotFound   = errors.New("chat session not found")
)
