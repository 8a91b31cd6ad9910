package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/tagrss/pkg/item"
)

// ClassifyItemParams defines parameters for the classify_item tool.
type ClassifyItemParams struct {
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	URL       string   `json:"url,omitempty"`
	Published string   `json:"published,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	SourceID  int64    `json:"sourceID,omitempty"`
}

// ClassifyItemResult contains the tags and folders of the item.
type ClassifyItemResult struct {
	Message   string   `json:"message"`
	Error     string   `json:"error,omitempty"`
	Tags      []string `json:"tags"`
	Folders   []string `json:"folders"`
	AddedTags int      `json:"addedTags"`
}

func (p ClassifyItemParams) toItem() (*item.Item, error) {
	it := &item.Item{
		SourceID: p.SourceID,
		Title:    p.Title,
		URL:      p.URL,
		Tags:     item.NewTagSet(p.Tags...),
	}

	if p.Content != "" {
		content := p.Content
		it.Content = &content
	}

	if p.Published != "" {
		ts, err := time.Parse(time.RFC3339, p.Published)
		if err != nil {
			return nil, fmt.Errorf("published: %w", err)
		}

		ts = ts.UTC()
		it.PublishedAt = &ts
	}

	return it, nil
}

// handleClassifyItem handles the classify_item tool call.
func (s *Server) handleClassifyItem(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[ClassifyItemParams],
) (*mcp.CallToolResultFor[ClassifyItemResult], error) {
	result := ClassifyItemResult{
		Tags:    []string{},
		Folders: []string{},
	}

	it, err := params.Arguments.toItem()
	if err != nil {
		result.Error = err.Error()
		result.Message = "INVALID INPUT ERROR: " + result.Error

		return newResult(result.Message, result), nil
	}

	res := s.classifier.Classify(it)

	result.Tags = res.Tags
	result.Folders = res.Folders
	result.AddedTags = res.Added
	result.Message = classifyMessage(result)

	return newResult(result.Message, result), nil
}

func classifyMessage(r ClassifyItemResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Added %d tags.", r.AddedTags)

	if len(r.Tags) > 0 {
		fmt.Fprintf(&sb, " Tags: %s.", strings.Join(r.Tags, ", "))
	}

	if len(r.Folders) == 0 {
		sb.WriteString(" The item belongs to no folder.")
	} else {
		fmt.Fprintf(&sb, " Folders: %s.", strings.Join(r.Folders, ", "))
	}

	return sb.String()
}

func newResult[Out any](text string, out Out) *mcp.CallToolResultFor[Out] {
	return &mcp.CallToolResultFor[Out]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		StructuredContent: out,
	}
}
