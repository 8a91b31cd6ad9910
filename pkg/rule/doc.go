// Package rule defines tag rules: deterministic predicates that map an item
// to an optional tag.
//
// There are three kinds of rule:
//   - [Contains] matches a literal or regular expression pattern against the
//     item title, then the item content.
//   - [TimeRange] matches items published inside an inclusive time window.
//   - [FromSource] matches items from a single feed source.
//
// Rules are validated when they are constructed, so evaluation never fails.
// [Spec] is the serialized form of a rule, discriminated by its type field.
package rule
