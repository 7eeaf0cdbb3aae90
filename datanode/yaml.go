package datanode

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a YAML document into a node tree. Mapping keys become
// named children; scalar sequence items become children named after the
// item text, so an event can be written as a list of action lines.
func FromYAML(data []byte, file string) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("datanode: unmarshal %s: %w", file, err)
	}
	root := &Node{File: file}
	if len(doc.Content) == 0 {
		return root, nil
	}
	if err := fill(root, doc.Content[0]); err != nil {
		return nil, fmt.Errorf("datanode: %s: %w", file, err)
	}
	root.setFile(file)
	return root, nil
}

// FromYAMLNode converts an already decoded YAML value, such as a field of
// a larger spec declared as yaml.Node.
func FromYAMLNode(y *yaml.Node, file string) (*Node, error) {
	root := &Node{File: file}
	if y == nil || y.Kind == 0 {
		return root, nil
	}
	if y.Kind == yaml.DocumentNode && len(y.Content) > 0 {
		y = y.Content[0]
	}
	if err := fill(root, y); err != nil {
		return nil, fmt.Errorf("datanode: %s: %w", file, err)
	}
	root.setFile(file)
	return root, nil
}

func fill(n *Node, y *yaml.Node) error {
	if y.Kind == yaml.AliasNode && y.Alias != nil {
		y = y.Alias
	}
	n.Line = y.Line

	switch y.Kind {
	case yaml.ScalarNode:
		n.Value = y.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			child := &Node{Name: k.Value, Line: k.Line}
			if err := fill(child, v); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		}
	case yaml.SequenceNode:
		for _, item := range y.Content {
			if item.Kind == yaml.ScalarNode {
				n.Children = append(n.Children, &Node{Name: item.Value, Line: item.Line})
				continue
			}
			if item.Kind == yaml.MappingNode && len(item.Content) == 2 {
				child := &Node{Name: item.Content[0].Value, Line: item.Line}
				if err := fill(child, item.Content[1]); err != nil {
					return err
				}
				n.Children = append(n.Children, child)
				continue
			}
			child := &Node{Line: item.Line}
			if err := fill(child, item); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		}
	default:
		return fmt.Errorf("line %d: unsupported yaml node kind %d", y.Line, y.Kind)
	}
	return nil
}
