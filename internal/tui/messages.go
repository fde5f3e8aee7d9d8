package tui

import "github.com/Veraticus/qrpay/internal/orchestrator"

type scanDoneMsg struct {
	result *orchestrator.Result
	input  string
}

type scanFailedMsg struct {
	err   error
	input string
}
