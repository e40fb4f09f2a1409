package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"
)

// PathList is a list of input paths or glob patterns. A single string is
// accepted in place of a list.
type PathList []string

func (s *PathList) decode(a interface{}) error {
	switch d := a.(type) {
	case string:
		*s = append(*s, d)

	case []interface{}:
		for _, de := range d {
			if err := s.decode(de); err != nil {
				return err
			}
		}

	default:
		return errors.Errorf("unexpected type %T for path list: %+v", d, d)
	}

	return nil
}

func (s *PathList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var a interface{}
	if err := unmarshal(&a); err != nil {
		return err
	}

	return s.decode(a)
}

func (s *PathList) UnmarshalJSON(b []byte) error {
	var a interface{}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}

	return s.decode(a)
}

// Expand resolves the glob patterns. Plain paths are kept even when they
// do not exist so the reader reports them.
func (s PathList) Expand() ([]string, error) {
	var paths []string
	for _, pattern := range s {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid path pattern %s", pattern)
		}

		if len(matches) == 0 {
			paths = append(paths, pattern)
			continue
		}

		paths = append(paths, matches...)
	}
	return paths, nil
}
