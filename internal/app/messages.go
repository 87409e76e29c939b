package app

import (
	"time"

	"leadboard/internal/dispatch"
)

type tickMsg time.Time

type commandResultMsg struct {
	result dispatch.Result
}
