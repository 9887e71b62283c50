package policy

import (
	"encoding/json"

	"github.com/giantswarm/microerror"
)

const (
	documentVersion = "2012-10-17"

	EffectAllow = "Allow"
)

// Document is an IAM policy document. It is built fresh each run and never
// mutated after construction.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

type Statement struct {
	Sid       string        `json:"Sid,omitempty"`
	Effect    string        `json:"Effect"`
	Principal *Principal    `json:"Principal,omitempty"`
	Action    StringOrSlice `json:"Action"`
	Resource  StringOrSlice `json:"Resource,omitempty"`
	Condition Condition     `json:"Condition,omitempty"`
}

type Principal struct {
	Service   string `json:"Service,omitempty"`
	Federated string `json:"Federated,omitempty"`
}

// Condition maps a condition operator ("StringEquals", "StringLike") to its
// key/value pairs. encoding/json sorts map keys, which keeps rendering
// deterministic.
type Condition map[string]map[string]string

// StringOrSlice marshals a single element as a plain JSON string and
// multiple elements as an array, matching the document shapes IAM returns.
type StringOrSlice []string

func (s StringOrSlice) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

func (s *StringOrSlice) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringOrSlice{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return microerror.Mask(err)
	}
	*s = many

	return nil
}

// Render returns the canonical JSON form of the document. For identical
// documents the output is byte-identical across runs.
func (d Document) Render() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, microerror.Mask(err)
	}

	return data, nil
}
