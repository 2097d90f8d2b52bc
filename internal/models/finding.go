package models

import (
	"encoding/json"
	"fmt"
)

type FindingSeverity int

const (
	SeverityUnknown FindingSeverity = iota
	SeverityInfo
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[FindingSeverity]string{
	SeverityUnknown:  "Unknown",
	SeverityInfo:     "Info",
	SeverityLow:      "Low",
	SeverityMedium:   "Medium",
	SeverityHigh:     "High",
	SeverityCritical: "Critical",
}

func (s FindingSeverity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return severityNames[SeverityUnknown]
}

func (s FindingSeverity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *FindingSeverity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev, n := range severityNames {
		if n == name {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown finding severity %q", name)
}

type FindingType int

const (
	TypeUnknown FindingType = iota
	TypeExploit
	TypeSuspicious
	TypeDegraded
	TypeInfo
)

var typeNames = map[FindingType]string{
	TypeUnknown:    "Unknown",
	TypeExploit:    "Exploit",
	TypeSuspicious: "Suspicious",
	TypeDegraded:   "Degraded",
	TypeInfo:       "Info",
}

func (t FindingType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return typeNames[TypeUnknown]
}

func (t FindingType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *FindingType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for ft, n := range typeNames {
		if n == name {
			*t = ft
			return nil
		}
	}
	return fmt.Errorf("unknown finding type %q", name)
}

// Finding is an alert record produced by a block evaluation.
type Finding struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	AlertID     string            `json:"alertId"`
	Severity    FindingSeverity   `json:"severity"`
	Type        FindingType       `json:"type"`
	Protocol    string            `json:"protocol"`
	Metadata    map[string]string `json:"metadata"`
}
