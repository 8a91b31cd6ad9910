// Package expr provides CEL (Common Expression Language) functionality
// for evaluating boolean expressions against feed items.
//
// CEL expressions have access to variables:
//   - `title` (string): The item title
//   - `content` (string): The item content, empty when absent
//   - `url` (string): The item link
//   - `source` (int): The feed source ID
//   - `published` (timestamp): The publication time, the zero time when absent
//   - `hasPublished` (bool): Whether the item has a publication time
//   - `tags` (list<string>): The tag names already attached to the item
//
// And to custom functions for working with hierarchical tag names:
//   - tagBase(string): The last segment of a tag name
//   - tagParent(string): The tag name without its last segment
//   - tagUnder(string, string): Whether a tag equals or lies below another
package expr
