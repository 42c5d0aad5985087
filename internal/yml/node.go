// Package yml provides navigation helpers over yaml.v3 nodes.
package yml

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	Node yaml.Node
)

// Items iterates sequence elements
func (n *Node) Items(callback func(index int, node *Node) error) error {
	for i := 0; i < len(n.Content); i++ {
		if err := callback(i, (*Node)(n.Content[i])); err != nil {
			return err
		}
	}
	return nil
}

// Pairs iterates mapping key/value pairs in declaration order
func (n *Node) Pairs(callback func(key string, node *Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := callback(n.Content[i].Value, (*Node)(n.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

// Interface converts the node into plain Go values
func (n *Node) Interface() interface{} {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!str":
			return n.Value
		case "!!bool":
			return strings.ToLower(n.Value) == "true"
		case "!!null":
			return nil
		case "!!float":
			f, _ := strconv.ParseFloat(n.Value, 64)
			return f
		case "!!int":
			i, _ := strconv.Atoi(n.Value)
			return i
		default:
			return n.Value
		}
	case yaml.MappingNode:
		var aMap = make(map[string]interface{})
		for i := 0; i+1 < len(n.Content); i += 2 {
			aMap[n.Content[i].Value] = (*Node)(n.Content[i+1]).Interface()
		}
		return aMap
	case yaml.SequenceNode:
		var aSlice = make([]interface{}, 0, len(n.Content))
		for i := 0; i < len(n.Content); i++ {
			aSlice = append(aSlice, (*Node)(n.Content[i]).Interface())
		}
		return aSlice
	case yaml.AliasNode:
		if n.Alias != nil {
			return (*Node)(n.Alias).Interface()
		}
	}
	return nil
}
