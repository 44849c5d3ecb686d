package logger

import "github.com/sirupsen/logrus"

// Fields is an immutable key/value bag attached to a log entry. Add returns
// a new Fields value so a base set can be reused across call sites without
// aliasing bugs.
type Fields map[string]interface{}

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) clone() Fields {
	res := make(Fields, len(f))
	for k, v := range f {
		res[k] = v
	}
	return res
}

func (f Fields) Add(key string, val interface{}) Fields {
	res := f.clone()
	res[key] = val
	return res
}

func (f Fields) Merge(other Fields) Fields {
	if len(other) < 1 {
		return f
	}

	res := f.clone()
	for k, v := range other {
		res[k] = v
	}
	return res
}

func (f Fields) logrus() logrus.Fields {
	res := make(logrus.Fields, len(f))
	for k, v := range f {
		res[k] = v
	}
	return res
}
