package datanode

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseText reads the brace data format:
//
//	name = value
//	block {
//		child
//	}
//
// Lines starting with // are comments. Blocks may also be opened on the
// line after their name. With namesOnlyAfterRoot, only top-level lines are
// split on '='; deeper lines keep the whole text as the name, which is how
// script action lines such as "if $x = 5" are read.
func ParseText(r io.Reader, file string, namesOnlyAfterRoot bool) (*Node, error) {
	root := &Node{File: file}
	stack := []*Node{root}
	var pending *Node

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}

		top := stack[len(stack)-1]
		switch {
		case text == "{":
			if pending == nil {
				return nil, fmt.Errorf("datanode: %s:%d: block opened without a name", file, line)
			}
			stack = append(stack, pending)
			pending = nil
			continue
		case text == "}":
			if len(stack) == 1 {
				return nil, fmt.Errorf("datanode: %s:%d: unmatched }", file, line)
			}
			stack = stack[:len(stack)-1]
			pending = nil
			continue
		}

		if name, ok := strings.CutSuffix(text, "{"); ok {
			n := &Node{Name: strings.TrimSpace(name), File: file, Line: line}
			top.Children = append(top.Children, n)
			stack = append(stack, n)
			pending = nil
			continue
		}

		n := &Node{File: file, Line: line}
		splittable := !namesOnlyAfterRoot || len(stack) == 1
		if name, value, ok := strings.Cut(text, "="); ok && splittable && name != "" {
			n.Name = strings.TrimSpace(name)
			n.Value = strings.TrimSpace(value)
		} else {
			n.Name = text
		}
		top.Children = append(top.Children, n)
		pending = n
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("datanode: read %s: %w", file, err)
	}
	if len(stack) != 1 {
		return nil, fmt.Errorf("datanode: %s: %d unclosed block(s)", file, len(stack)-1)
	}
	return root, nil
}

func ParseString(s, file string) (*Node, error) {
	return ParseText(strings.NewReader(s), file, false)
}

// ParseScript parses mob script text, keeping action lines whole.
func ParseScript(s, file string) (*Node, error) {
	return ParseText(strings.NewReader(s), file, true)
}
