package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"printscout/scanner"
)

// ParseTargets reads a subnets file into an ordered target list. One entry
// per line: "cidr,location", the location optional. Blank lines and lines
// starting with # are skipped. Lines with a malformed CIDR are rejected
// here, before any of them can reach a sweep, and reported in the second
// return value.
func ParseTargets(text string) ([]scanner.Target, []string) {
	var targets []scanner.Target
	var problems []string

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ",", 2)
		subnet := strings.TrimSpace(parts[0])
		location := scanner.DefaultLocation
		if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
			location = strings.TrimSpace(parts[1])
		}

		if err := scanner.ValidateCIDR(subnet); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}

		targets = append(targets, scanner.Target{Subnet: subnet, Location: location})
	}

	return targets, problems
}

// LoadTargetsFile reads and parses the targets file at path.
func LoadTargetsFile(path string) ([]scanner.Target, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open targets file %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		sb.WriteString(sc.Text())
		sb.WriteString("\n")
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read targets file %s: %w", path, err)
	}

	targets, problems := ParseTargets(sb.String())
	return targets, problems, nil
}
