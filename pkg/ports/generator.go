package ports

import "context"

// GenerateRequest is a single free-text prompt plus the fixed style instruction.
type GenerateRequest struct {
	Prompt      string
	Instruction string
}

// Generator is the optional external text-generation collaborator.
// Implementations are fallible and latency-bearing; callers must bound them with a context.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
