package handler

type ContextKey string

var (
	SessionCtx  ContextKey = "session"
	PositionCtx ContextKey = "position"
)
