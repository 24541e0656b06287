package app

import "strings"

const (
	NodeFile   = "file"
	NodeFolder = "folder"
)

// FileNode is one entry of the parsed directory listing. Nodes are derived
// fresh from the repository's tree string on each render and never persisted.
type FileNode struct {
	Name   string
	Type   string
	Indent int
}

const (
	treeHeaderLine    = "Directory structure:"
	treeIndentWidth   = 4
	maxDisplayEntries = 20
)

func isBranchGlyph(r rune) bool {
	return r == '├' || r == '└'
}

func isTreeGlyph(r rune) bool {
	return r == '│' || r == '─' || isBranchGlyph(r)
}

// ParseTree converts the backend's ASCII directory tree into an ordered list
// of nodes. Each content line carries exactly one entry; the rune offset of
// its branch glyph divided by the per-level width gives the nesting depth.
// A trailing slash on the entry name is the folder signal — the tree format
// emitted by the ingestion service guarantees it, so glyph position alone is
// never used to classify. Malformed lines are dropped, never an error.
func ParseTree(raw string) []FileNode {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var nodes []FileNode
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), treeHeaderLine) {
			continue
		}

		branchAt := -1
		for i, r := range []rune(line) {
			if isBranchGlyph(r) {
				branchAt = i
				break
			}
		}
		if branchAt < 0 {
			continue
		}

		name := strings.TrimSpace(strings.Map(func(r rune) rune {
			if isTreeGlyph(r) {
				return ' '
			}
			return r
		}, line))
		if name == "" {
			continue
		}

		nodeType := NodeFile
		if strings.HasSuffix(name, "/") {
			nodeType = NodeFolder
			name = strings.TrimSuffix(name, "/")
			if name == "" {
				continue
			}
		}

		nodes = append(nodes, FileNode{
			Name:   name,
			Type:   nodeType,
			Indent: branchAt / treeIndentWidth,
		})
	}
	return nodes
}

// DisplayNodes applies the sidebar display cap. The cap is a display policy,
// not a parser limit; callers that need the full entry count use ParseTree.
func DisplayNodes(nodes []FileNode) []FileNode {
	if len(nodes) > maxDisplayEntries {
		return nodes[:maxDisplayEntries]
	}
	return nodes
}
