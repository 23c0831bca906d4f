package domain

import (
	"sort"
	"strconv"
)

// BalanceRecord is one ledger row. Cells follow the ledger's column order.
type BalanceRecord struct {
	Agent AgentID
	Cells []string
}

// AgentGroup holds every record belonging to one agent.
type AgentGroup struct {
	Agent   AgentID
	Columns []string
	Records []BalanceRecord
}

type Ledger struct {
	Columns     []string
	GroupColumn string
	Groups      []AgentGroup
}

// GroupRecords partitions records by agent and orders the groups by agent id.
// Records keep their ledger order inside a group.
func GroupRecords(columns []string, records []BalanceRecord) []AgentGroup {
	index := make(map[AgentID]int)
	groups := make([]AgentGroup, 0)
	for _, record := range records {
		if record.Agent == "" {
			continue
		}
		i, ok := index[record.Agent]
		if !ok {
			i = len(groups)
			index[record.Agent] = i
			groups = append(groups, AgentGroup{Agent: record.Agent, Columns: columns})
		}
		groups[i].Records = append(groups[i].Records, record)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return LessAgentID(groups[i].Agent, groups[j].Agent)
	})

	return groups
}

// LessAgentID orders numeric ids numerically and falls back to string order.
// Numeric ids sort before non-numeric ones.
func LessAgentID(a, b AgentID) bool {
	left, leftErr := strconv.ParseFloat(string(a), 64)
	right, rightErr := strconv.ParseFloat(string(b), 64)
	switch {
	case leftErr == nil && rightErr == nil:
		if left == right {
			return a < b
		}
		return left < right
	case leftErr == nil:
		return true
	case rightErr == nil:
		return false
	default:
		return a < b
	}
}

func (l Ledger) RecordCount() int {
	total := 0
	for _, group := range l.Groups {
		total += len(group.Records)
	}
	return total
}
