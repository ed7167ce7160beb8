package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime"
	"strconv"

	"botlint/internal/analyzer"
	"botlint/internal/engine"
	"botlint/internal/issue"
)

// SARIF 2.1.0 document types, limited to the fields botlint emits.
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun is a single analysis run.
type SARIFRun struct {
	Tool        SARIFTool         `json:"tool"`
	Results     []SARIFResult     `json:"results"`
	Invocations []SARIFInvocation `json:"invocations,omitempty"`
}

// SARIFTool wraps the driver.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes botlint and its rules.
type SARIFDriver struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule is one analyzer pass.
type SARIFRule struct {
	ID               string        `json:"id"`
	Name             string        `json:"name,omitempty"`
	ShortDescription *SARIFMessage `json:"shortDescription,omitempty"`
}

// SARIFResult is one issue.
type SARIFResult struct {
	RuleID       string                 `json:"ruleId"`
	RuleIndex    int                    `json:"ruleIndex"`
	Level        string                 `json:"level"`
	Message      SARIFMessage           `json:"message"`
	Locations    []SARIFLocation        `json:"locations,omitempty"`
	Fingerprints map[string]string      `json:"fingerprints,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// SARIFMessage holds plain text.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation wraps a physical location.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion is a line range.
type SARIFRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

// SARIFInvocation records how the tool ran.
type SARIFInvocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	Machine             string `json:"machine,omitempty"`
}

const (
	sarifSchema       = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	sarifRulePrefix   = "botlint/"
	unclassifiedRule  = "unclassified"
	fingerprintScheme = "botlint/v1"
)

// FormatSARIF converts an analysis result to a SARIF 2.1.0 document with
// one rule per analyzer pass.
func FormatSARIF(res *engine.Result, toolVersion string) (string, error) {
	passes := analyzer.Passes()
	rules := make([]SARIFRule, 0, len(passes)+1)
	ruleIndex := make(map[string]int, len(passes)+1)
	for _, p := range passes {
		ruleIndex[p.Name] = len(rules)
		rules = append(rules, SARIFRule{
			ID:               sarifRulePrefix + p.Name,
			Name:             p.Name,
			ShortDescription: &SARIFMessage{Text: p.Description},
		})
	}

	results := make([]SARIFResult, 0, len(res.Report.Issues))
	for _, iss := range res.Report.Issues {
		name := iss.Rule
		idx, ok := ruleIndex[name]
		if !ok {
			name = unclassifiedRule
			if idx, ok = ruleIndex[name]; !ok {
				idx = len(rules)
				ruleIndex[name] = idx
				rules = append(rules, SARIFRule{
					ID:               sarifRulePrefix + name,
					Name:             name,
					ShortDescription: &SARIFMessage{Text: "Issue recorded without its analyzer pass"},
				})
			}
		}

		results = append(results, SARIFResult{
			RuleID:    sarifRulePrefix + name,
			RuleIndex: idx,
			Level:     severityToSARIFLevel(iss.Severity),
			Message: SARIFMessage{
				Text: fmt.Sprintf("%s. %s", iss.Description, iss.Suggestion),
			},
			Locations: []SARIFLocation{
				{
					PhysicalLocation: &SARIFPhysicalLocation{
						ArtifactLocation: artifactFor(res.Source),
						Region:           &SARIFRegion{StartLine: iss.Line},
					},
				},
			},
			Fingerprints: map[string]string{
				fingerprintScheme: generateFingerprint(name, iss),
			},
			Properties: map[string]interface{}{
				"severity": string(iss.Severity),
				"type":     string(iss.Type),
				"category": iss.Category,
			},
		})
	}

	report := SARIFReport{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []SARIFRun{
			{
				Tool: SARIFTool{
					Driver: SARIFDriver{
						Name:            "botlint",
						Version:         toolVersion,
						SemanticVersion: toolVersion,
						Rules:           rules,
					},
				},
				Results: results,
				Invocations: []SARIFInvocation{
					{
						ExecutionSuccessful: true,
						Machine:             runtime.GOOS + "/" + runtime.GOARCH,
					},
				},
			},
		},
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF: %w", err)
	}
	return string(data), nil
}

// severityToSARIFLevel converts an issue severity to a SARIF level.
func severityToSARIFLevel(s issue.Severity) string {
	switch s {
	case issue.SeverityCritical, issue.SeverityHigh:
		return "error"
	case issue.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// artifactFor locates the analyzed source; stdin has no URI base.
func artifactFor(source string) *SARIFArtifactLocation {
	if source == "" || source[0] == '<' {
		return &SARIFArtifactLocation{URI: source}
	}
	return &SARIFArtifactLocation{URI: source, URIBaseID: "%SRCROOT%"}
}

// generateFingerprint hashes rule, line and code so a finding keeps its
// identity across runs of unchanged code.
func generateFingerprint(rule string, iss issue.Issue) string {
	h := sha256.New()
	h.Write([]byte(rule))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(iss.Line)))
	h.Write([]byte{0})
	h.Write([]byte(iss.Code))
	return hex.EncodeToString(h.Sum(nil))
}
