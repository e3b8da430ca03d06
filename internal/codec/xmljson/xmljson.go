// Package xmljson implements the xml-json and json-xml one-shot document
// converters. Conversion is root-preserving: the XML document's root
// element name becomes the single top-level JSON key and vice versa,
// so round-tripping through both directions reproduces the original
// root element name.
package xmljson

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/mjwatson/stream-proxy/internal/perr"
	"github.com/mjwatson/stream-proxy/internal/registry"
	"github.com/mjwatson/stream-proxy/internal/stage"
)

// Register adds xml-json and json-xml.
func Register(reg *registry.Registry) error {
	if err := reg.Register(registry.Registration{
		Name:        "xml-json",
		Factory:     func(int, string) (stage.Stage, error) { return xmlToJSON{}, nil },
		Description: "convert an XML document to root-preserving JSON",
	}); err != nil {
		return err
	}
	return reg.Register(registry.Registration{
		Name:        "json-xml",
		Factory:     func(int, string) (stage.Stage, error) { return jsonToXML{}, nil },
		Description: "convert root-preserving JSON to an XML document",
	})
}

// node is a generic XML tree: attributes, text content, and ordered
// children (duplicates allowed, since XML siblings may repeat a tag).
type node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*node
}

func parseXML(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *node
	var stackNodes []*node

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stackNodes) > 0 {
				parent := stackNodes[len(stackNodes)-1]
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stackNodes = append(stackNodes, n)
		case xml.EndElement:
			stackNodes = stackNodes[:len(stackNodes)-1]
		case xml.CharData:
			if len(stackNodes) > 0 {
				stackNodes[len(stackNodes)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xmljson: no root element found")
	}
	return root, nil
}

// toJSONValue renders a node as the any-typed value json.Marshal expects:
// a map for elements with attributes/children, a string for leaf text.
func toJSONValue(n *node) any {
	if len(n.Attrs) == 0 && len(n.Children) == 0 {
		return n.Text
	}
	m := make(map[string]any, len(n.Attrs)+len(n.Children)+1)
	for k, v := range n.Attrs {
		m["@"+k] = v
	}
	childGroups := make(map[string][]any)
	var order []string
	for _, c := range n.Children {
		if _, seen := childGroups[c.Name]; !seen {
			order = append(order, c.Name)
		}
		childGroups[c.Name] = append(childGroups[c.Name], toJSONValue(c))
	}
	for _, name := range order {
		vals := childGroups[name]
		if len(vals) == 1 {
			m[name] = vals[0]
		} else {
			m[name] = vals
		}
	}
	if text := n.Text; text != "" && len(n.Children) == 0 {
		m["#text"] = text
	}
	return m
}

type xmlToJSON struct{}

func (xmlToJSON) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	root, err := parseXML(input)
	if err != nil {
		return nil, nil, perr.WrapInvalidData(err, "codec/xmljson", "Push", "parse XML")
	}
	doc := map[string]any{root.Name: toJSONValue(root)}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, perr.WrapInvalidData(err, "codec/xmljson", "Push", "marshal JSON")
	}
	return out, nil, nil
}

type jsonToXML struct{}

func (jsonToXML) Push(_ stage.State, input []byte) (emitted, remainder []byte, err error) {
	if len(input) == 0 {
		return nil, nil, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(input, &doc); err != nil {
		return nil, nil, perr.WrapInvalidData(err, "codec/xmljson", "Push", "unmarshal JSON")
	}
	if len(doc) != 1 {
		return nil, nil, perr.WrapInvalidData(
			fmt.Errorf("xmljson: expected exactly one root key, got %d", len(doc)),
			"codec/xmljson", "Push", "root key validation")
	}
	var root string
	for k := range doc {
		root = k
	}

	var buf bytes.Buffer
	if err := writeXMLElement(&buf, root, doc[root]); err != nil {
		return nil, nil, perr.WrapInvalidData(err, "codec/xmljson", "Push", "render XML")
	}
	return buf.Bytes(), nil, nil
}

func writeXMLElement(buf *bytes.Buffer, name string, value any) error {
	switch v := value.(type) {
	case string:
		fmt.Fprintf(buf, "<%s>", name)
		xml.EscapeText(buf, []byte(v))
		fmt.Fprintf(buf, "</%s>", name)
		return nil
	case map[string]any:
		attrs, children, text := splitJSONObject(v)
		fmt.Fprintf(buf, "<%s", name)
		for _, k := range attrs {
			fmt.Fprintf(buf, " %s=%q", k, v["@"+k])
		}
		buf.WriteByte('>')
		if text != "" {
			xml.EscapeText(buf, []byte(text))
		}
		for _, k := range children {
			switch cv := v[k].(type) {
			case []any:
				for _, item := range cv {
					if err := writeXMLElement(buf, k, item); err != nil {
						return err
					}
				}
			default:
				if err := writeXMLElement(buf, k, cv); err != nil {
					return err
				}
			}
		}
		fmt.Fprintf(buf, "</%s>", name)
		return nil
	default:
		fmt.Fprintf(buf, "<%s>%v</%s>", name, v, name)
		return nil
	}
}

// splitJSONObject separates a decoded JSON object's keys into XML
// attributes (prefixed "@"), child elements, and returns "#text" as the
// node's direct text, all sorted for deterministic output.
func splitJSONObject(m map[string]any) (attrs, children []string, text string) {
	for k := range m {
		switch {
		case k == "#text":
			if s, ok := m[k].(string); ok {
				text = s
			}
		case len(k) > 0 && k[0] == '@':
			attrs = append(attrs, k[1:])
		default:
			children = append(children, k)
		}
	}
	sort.Strings(attrs)
	sort.Strings(children)
	return attrs, children, text
}
