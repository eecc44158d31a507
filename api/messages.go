package api

import (
	"github.com/krehermann/intcode/core"
)

type ProgramResponse struct {
	Hash   string  `json:"hash"`
	Length int     `json:"length"`
	Code   []int64 `json:"code,omitempty"`
}

type SpawnRequest struct {
	// hex program hash from POST /programs
	Program string `json:"program"`
}

type RunRequest struct {
	Input []int64 `json:"input"`
	// text lines for ascii programs, sent after Input
	Lines []string `json:"lines"`
}

type MachineResponse struct {
	ID          string  `json:"id"`
	Program     string  `json:"program"`
	State       string  `json:"state"`
	Error       string  `json:"error,omitempty"`
	Steps       uint64  `json:"steps"`
	QueuedInput int     `json:"queued_input"`
	Output      []int64 `json:"output"`
}

func newMachineResponse(s core.Snapshot) MachineResponse {
	resp := MachineResponse{
		ID:          string(s.ID),
		Program:     s.Program.String(),
		State:       s.State.String(),
		Steps:       s.Steps,
		QueuedInput: s.QueuedInput,
		Output:      s.Output,
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}
	if resp.Output == nil {
		resp.Output = []int64{}
	}
	return resp
}

type OutputResponse struct {
	ID     string  `json:"id"`
	Output []int64 `json:"output"`
}

type CodeResponse struct {
	ID   string  `json:"id"`
	Code []int64 `json:"code"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
