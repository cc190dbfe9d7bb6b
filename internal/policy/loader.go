package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML policy file and returns the validated Policy with
// the raw bytes. KnownFields(true) makes typos and unused fields fail
// immediately instead of silently falling back to defaults.
func Load(path string) (*Policy, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, nil, err
	}

	if err := Validate(&p); err != nil {
		return nil, data, err
	}

	return &p, data, nil
}

// Hash generates a SHA256 hash of the policy from its canonical JSON
// form. Structs, not maps, keep the field order deterministic so the
// hash is reproducible.
func Hash(p *Policy) (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// DecisionSnapshot freezes the policy a decision was made under, for
// the audit trail.
type DecisionSnapshot struct {
	PolicyHash string    `json:"policy_hash"`
	PolicyYAML string    `json:"policy_yaml,omitempty"`
	PolicyID   string    `json:"policy_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDecisionSnapshot creates a snapshot for audit.
func NewDecisionSnapshot(p *Policy, yamlData []byte) (*DecisionSnapshot, error) {
	hash, err := Hash(p)
	if err != nil {
		return nil, err
	}

	return &DecisionSnapshot{
		PolicyHash: hash,
		PolicyYAML: string(yamlData),
		PolicyID:   p.Meta.PolicyID,
		CreatedAt:  time.Now(),
	}, nil
}
