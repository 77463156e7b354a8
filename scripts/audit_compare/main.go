// Command audit_compare replays compliance audits against two deployments and
// reports records whose rule outcomes differ. It is used when rolling out
// rule changes: point -baseline at the running release and -candidate at the
// new build.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type target struct {
	RecordType string `json:"record_type"`
	ID         string `json:"id"`
	Critical   bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type auditResult struct {
	RuleID string `json:"rule_id"`
	Status string `json:"status"`
}

type auditReport struct {
	OverallStatus string        `json:"overall_status"`
	Score         float64       `json:"score"`
	Results       []auditResult `json:"results"`
}

type envelope struct {
	Data  *auditReport `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type ruleDiff struct {
	RuleID    string
	Baseline  string
	Candidate string
}

type comparison struct {
	Target          target
	BaselineStatus  string
	CandidateStatus string
	Diffs           []ruleDiff
	Error           error
	Duration        time.Duration
}

func (c comparison) differs() bool {
	return c.BaselineStatus != c.CandidateStatus || len(c.Diffs) > 0
}

func main() {
	var (
		baseline    string
		candidate   string
		targetsPath string
		token       string
		timeout     time.Duration
	)

	flag.StringVar(&baseline, "baseline", "http://localhost:8080/api/v1", "Baseline API base URL")
	flag.StringVar(&candidate, "candidate", "http://localhost:8081/api/v1", "Candidate API base URL")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "audit_compare", "targets.json"), "Path to JSON targets file")
	flag.StringVar(&token, "token", os.Getenv("CALRICULA_TOKEN"), "Bearer token sent to both deployments")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		results  []comparison
		breaking int
		optional int
	)

	for _, t := range targets {
		res := compareTarget(client, baseline, candidate, token, t)
		if res.Error != nil || res.differs() {
			if t.Critical {
				breaking++
			} else {
				optional++
			}
		}
		results = append(results, res)
	}

	printReport(results)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optional)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	for i, t := range file.Targets {
		switch t.RecordType {
		case "course", "program":
		case "":
			file.Targets[i].RecordType = "course"
		default:
			return nil, fmt.Errorf("target %s: unknown record_type %q", t.ID, t.RecordType)
		}
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, baseline, candidate, token string, tgt target) comparison {
	res := comparison{Target: tgt}
	start := time.Now()

	left, err := fetchAudit(client, baseline, token, tgt)
	if err != nil {
		res.Error = fmt.Errorf("baseline: %w", err)
		return res
	}
	right, err := fetchAudit(client, candidate, token, tgt)
	if err != nil {
		res.Error = fmt.Errorf("candidate: %w", err)
		return res
	}
	res.Duration = time.Since(start)
	res.BaselineStatus = left.OverallStatus
	res.CandidateStatus = right.OverallStatus
	res.Diffs = diffResults(left.Results, right.Results)
	return res
}

func fetchAudit(client *http.Client, base, token string, tgt target) (*auditReport, error) {
	if client == nil {
		return nil, errors.New("nil client")
	}
	url := fmt.Sprintf("%s/%ss/%s/compliance", strings.TrimRight(base, "/"), tgt.RecordType, tgt.ID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if body.Error != nil {
			return nil, fmt.Errorf("status %d: %s %s", resp.StatusCode, body.Error.Code, body.Error.Message)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if body.Data == nil {
		return nil, errors.New("empty report")
	}
	return body.Data, nil
}

// diffResults compares rule outcomes by rule id. A rule missing on one side
// is reported with an empty status.
func diffResults(left, right []auditResult) []ruleDiff {
	statuses := make(map[string][2]string)
	for _, r := range left {
		pair := statuses[r.RuleID]
		pair[0] = r.Status
		statuses[r.RuleID] = pair
	}
	for _, r := range right {
		pair := statuses[r.RuleID]
		pair[1] = r.Status
		statuses[r.RuleID] = pair
	}

	var diffs []ruleDiff
	for id, pair := range statuses {
		if pair[0] != pair[1] {
			diffs = append(diffs, ruleDiff{RuleID: id, Baseline: pair[0], Candidate: pair[1]})
		}
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].RuleID < diffs[j].RuleID })
	return diffs
}

func printReport(results []comparison) {
	fmt.Println("Compliance Audit Compare")
	fmt.Println("========================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if res.differs() {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s (critical: %t)\n", status, res.Target.RecordType, res.Target.ID, res.Target.Critical)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Overall: %s -> %s (%s)\n", res.BaselineStatus, res.CandidateStatus, res.Duration)
		for _, d := range res.Diffs {
			fmt.Printf("  %s: %s -> %s\n", d.RuleID, orDash(d.Baseline), orDash(d.Candidate))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
