package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/tagrss/pkg/classifier"
	"github.com/macropower/tagrss/pkg/item"
	"github.com/macropower/tagrss/pkg/store"
)

const defaultFolderItemsLimit = 50

// FolderItemsParams defines parameters for the folder_items tool.
type FolderItemsParams struct {
	Folder string `json:"folder"`
	Limit  int    `json:"limit,omitempty"`
}

// FolderItemsResult lists the stored items of one folder.
type FolderItemsResult struct {
	Folder    string     `json:"folder"`
	Message   string     `json:"message"`
	Items     []ItemInfo `json:"items"`
	ItemCount int        `json:"itemCount"`
	Found     bool       `json:"found"`
}

// ItemInfo summarizes a stored item.
type ItemInfo struct {
	Title     string   `json:"title"`
	URL       string   `json:"url,omitempty"`
	Published string   `json:"published,omitempty"`
	Content   string   `json:"content,omitempty"`
	Tags      []string `json:"tags"`
	ID        int64    `json:"id"`
	SourceID  int64    `json:"sourceID"`
}

func newItemInfo(it *item.Item) ItemInfo {
	tags := it.Tags.Names()
	if tags == nil {
		tags = []string{}
	}

	return ItemInfo{
		ID:        it.ID,
		SourceID:  it.SourceID,
		Title:     it.Title,
		URL:       it.URL,
		Published: formatTime(it.PublishedAt),
		Content:   truncateString(it.ContentString(), maxContentLen),
		Tags:      tags,
	}
}

// handleFolderItems handles the folder_items tool call.
func (s *Server) handleFolderItems(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[FolderItemsParams],
) (*mcp.CallToolResultFor[FolderItemsResult], error) {
	args := params.Arguments

	result := FolderItemsResult{
		Folder: args.Folder,
		Items:  []ItemInfo{},
	}

	stored, err := s.items.ListItems(ctx, store.ItemQuery{})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	items, err := s.classifier.Filter(args.Folder, stored)
	if errors.Is(err, classifier.ErrUnknownFolder) {
		result.Message = fmt.Sprintf(
			"INVALID INPUT ERROR: Folder %q not found. Use an EXACT INPUT from the list_folders tool.",
			args.Folder,
		)

		return newResult(result.Message, result), nil
	}
	if err != nil {
		return nil, err //nolint:wrapcheck // Already descriptive.
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultFolderItemsLimit
	}

	total := len(items)
	if len(items) > limit {
		items = items[:limit]
	}

	for _, it := range items {
		result.Items = append(result.Items, newItemInfo(it))
	}

	result.Found = true
	result.ItemCount = len(result.Items)
	result.Message = fmt.Sprintf("Found %d items in folder %q.", total, args.Folder)

	if total > len(items) {
		result.Message += fmt.Sprintf(" Showing the newest %d.", len(items))
	}

	return newResult(result.Message, result), nil
}
