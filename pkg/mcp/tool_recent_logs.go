package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RecentLogsParams defines parameters for the recent_logs tool.
type RecentLogsParams struct {
	Limit int `json:"limit,omitempty"`
}

// RecentLogsResult contains recorded log records.
type RecentLogsResult struct {
	Message string     `json:"message"`
	Entries []LogEntry `json:"entries"`
}

// LogEntry is one log record.
type LogEntry struct {
	Attrs   map[string]any `json:"attrs,omitempty"`
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
}

// handleRecentLogs handles the recent_logs tool call.
func (s *Server) handleRecentLogs(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[RecentLogsParams],
) (*mcp.CallToolResultFor[RecentLogsResult], error) {
	entries := s.recorder.Entries()

	if limit := params.Arguments.Limit; limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	result := RecentLogsResult{
		Entries: make([]LogEntry, 0, len(entries)),
	}

	for _, e := range entries {
		result.Entries = append(result.Entries, LogEntry{
			Time:    e.Time.UTC().Format(time.RFC3339Nano),
			Level:   e.Level,
			Message: e.Message,
			Attrs:   e.Attrs,
		})
	}

	result.Message = fmt.Sprintf("Found %d log records.", len(result.Entries))

	return newResult(result.Message, result), nil
}
