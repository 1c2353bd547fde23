package state

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Category uint

const (
	InBacklog Category = iota
	InProcess
	Done
)

var categoryNames = map[Category]string{
	InBacklog: "InBacklog",
	InProcess: "InProcess",
	Done:      "Done",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", uint(c))
}

func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if strings.EqualFold(name, s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown state category '%s'", s)
}

func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseCategory(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Category) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}
