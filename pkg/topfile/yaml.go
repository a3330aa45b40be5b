package topfile

import (
	"gopkg.in/yaml.v3"

	"github.com/nrgaway/topd/pkg/errors"
)

// Parse decodes a rendered top file. Key order is preserved, which is why
// this walks yaml.Node instead of unmarshalling into maps. The top-level
// "include" key is lifted into Document.Includes and removed from the body.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, errors.ErrMalformedTop, "invalid top file YAML")
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return &Document{}, nil
	}

	body := root.Content[0]
	if body.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrMalformedTop, "top file is not a mapping")
	}

	document := &Document{}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key := body.Content[i]
		value := body.Content[i+1]

		if key.Value == "include" {
			if err := value.Decode(&document.Includes); err != nil {
				return nil, errors.Wrap(err, errors.ErrMalformedTop, "invalid include list")
			}
			continue
		}

		section, err := parseEnv(key.Value, value)
		if err != nil {
			return nil, err
		}
		document.Envs = append(document.Envs, section)
	}
	return document, nil
}

func parseEnv(saltenv string, node *yaml.Node) (EnvSection, error) {
	section := EnvSection{Saltenv: saltenv}
	if node.Kind != yaml.MappingNode {
		return section, errors.Newf(errors.ErrMalformedTop,
			"environment %q is not a mapping of targets", saltenv)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]

		target := Target{Name: name}
		if value.Kind != yaml.SequenceNode {
			// Kept, not rejected: the merge reports malformed targets so a
			// bad document fails the merge, not the parse of its siblings.
			target.Invalid = true
			section.Targets = append(section.Targets, target)
			continue
		}

		for _, item := range value.Content {
			entry, err := parseEntry(saltenv, name, item)
			if err != nil {
				return section, err
			}
			target.Entries = append(target.Entries, entry)
		}
		section.Targets = append(section.Targets, target)
	}
	return section, nil
}

func parseEntry(saltenv, target string, node *yaml.Node) (Entry, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return StateEntry(node.Value), nil
	case yaml.MappingNode:
		match := make(map[string]interface{})
		if err := node.Decode(&match); err != nil {
			return Entry{}, errors.Wrapf(err, errors.ErrMalformedTop,
				"invalid match entry under %s:%s", saltenv, target)
		}
		return MatchEntry(match), nil
	}
	return Entry{}, errors.Newf(errors.ErrMalformedTop,
		"entry under %s:%s is neither a state nor a match condition", saltenv, target)
}

// MarshalYAML encodes the document with its original ordering.
func (d *Document) MarshalYAML() (interface{}, error) {
	body := &yaml.Node{Kind: yaml.MappingNode}

	if len(d.Includes) > 0 {
		var includes yaml.Node
		if err := includes.Encode(d.Includes); err != nil {
			return nil, err
		}
		body.Content = append(body.Content, scalarNode("include"), &includes)
	}

	for _, section := range d.Envs {
		envNode := &yaml.Node{Kind: yaml.MappingNode}
		for _, target := range section.Targets {
			entries := &yaml.Node{Kind: yaml.SequenceNode}
			for _, entry := range target.Entries {
				var item yaml.Node
				var err error
				if entry.IsMatch() {
					err = item.Encode(entry.Match)
				} else {
					err = item.Encode(entry.State)
				}
				if err != nil {
					return nil, err
				}
				itemCopy := item
				entries.Content = append(entries.Content, &itemCopy)
			}
			envNode.Content = append(envNode.Content, scalarNode(target.Name), entries)
		}
		body.Content = append(body.Content, scalarNode(section.Saltenv), envNode)
	}
	return body, nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}
