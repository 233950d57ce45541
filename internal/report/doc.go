// Package report renders a shareable project summary of a state document as
// Markdown (with a fingerprinted YAML front matter) or as standalone HTML.
package report
