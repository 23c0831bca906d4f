package domain

import "strings"

// missingPlaceholder is how spreadsheet exports spell an empty numeric cell.
const missingPlaceholder = "nan"

type DirectoryEntry struct {
	Agent string
	Phone string
}

// Directory maps agents to their registered phone numbers.
type Directory struct {
	phones map[AgentID]PhoneNumber
}

// NewDirectory trims both sides of every entry. When an agent appears more than
// once the first entry wins.
func NewDirectory(entries []DirectoryEntry) Directory {
	phones := make(map[AgentID]PhoneNumber, len(entries))
	for _, entry := range entries {
		id := NormalizeAgentID(entry.Agent)
		if _, ok := phones[id]; ok {
			continue
		}
		phones[id] = PhoneNumber(strings.TrimSpace(entry.Phone))
	}

	return Directory{phones: phones}
}

// Resolve returns the phone number registered for id. Empty numbers and the
// "nan" placeholder are reported as absent.
func (d Directory) Resolve(id AgentID) (PhoneNumber, bool) {
	phone, ok := d.phones[NormalizeAgentID(string(id))]
	if !ok {
		return "", false
	}
	if phone == "" || strings.EqualFold(string(phone), missingPlaceholder) {
		return "", false
	}

	return phone, true
}

func (d Directory) Len() int {
	return len(d.phones)
}
