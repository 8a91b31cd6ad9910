package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListFoldersParams defines parameters for the list_folders tool.
type ListFoldersParams struct{}

// ListFoldersResult lists the folders of the catalog.
type ListFoldersResult struct {
	Message     string       `json:"message"`
	Folders     []FolderInfo `json:"folders"`
	Skipped     []string     `json:"skipped"`
	FolderCount int          `json:"folderCount"`
}

// FolderInfo describes one folder.
type FolderInfo struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// handleListFolders handles the list_folders tool call.
func (s *Server) handleListFolders(
	_ context.Context,
	_ *mcp.ServerSession,
	_ *mcp.CallToolParamsFor[ListFoldersParams],
) (*mcp.CallToolResultFor[ListFoldersResult], error) {
	catalog := s.classifier.Catalog()

	result := ListFoldersResult{
		Folders: []FolderInfo{},
		Skipped: []string{},
	}

	for _, f := range catalog.Folders() {
		result.Folders = append(result.Folders, FolderInfo{
			Name:       f.Name,
			Expression: f.Root.String(),
		})
	}

	for _, d := range catalog.Diagnostics() {
		result.Skipped = append(result.Skipped, d.String())
	}

	result.FolderCount = len(result.Folders)
	result.Message = fmt.Sprintf("Found %d folders.", result.FolderCount)

	if len(result.Skipped) > 0 {
		result.Message += fmt.Sprintf(" %d folder definitions were skipped.", len(result.Skipped))
	}

	return newResult(result.Message, result), nil
}
