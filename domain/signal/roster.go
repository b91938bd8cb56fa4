package signal

import (
	"fmt"
	"strings"
)

// Roster maps subject identifiers to groups using the column naming
// convention, e.g. exper1..exper19 and novice1..novice20.
type Roster struct {
	ExpertPrefix string
	NovicePrefix string
	Counts       SubjectCounts
}

// NewRoster builds a roster from options
func NewRoster(opts Options) Roster {
	return Roster{
		ExpertPrefix: opts.ExpertPrefix,
		NovicePrefix: opts.NovicePrefix,
		Counts:       opts.SubjectCounts,
	}
}

// GroupOf classifies a subject: Expert when it starts with the expert prefix,
// Novice otherwise.
func (r Roster) GroupOf(id SubjectID) Group {
	if r.ExpertPrefix != "" && strings.HasPrefix(string(id), r.ExpertPrefix) {
		return GroupExpert
	}
	return GroupNovice
}

// Subjects returns the ordered subject list. With counts set the names are
// generated (experts first); otherwise headers are filtered by prefix and
// a header matching neither prefix, such as the time axis, is dropped.
func (r Roster) Subjects(headers []string) []SubjectID {
	if r.Counts.Expert > 0 || r.Counts.Novice > 0 {
		ids := make([]SubjectID, 0, r.Counts.Expert+r.Counts.Novice)
		for i := 1; i <= r.Counts.Expert; i++ {
			ids = append(ids, SubjectID(fmt.Sprintf("%s%d", r.ExpertPrefix, i)))
		}
		for i := 1; i <= r.Counts.Novice; i++ {
			ids = append(ids, SubjectID(fmt.Sprintf("%s%d", r.NovicePrefix, i)))
		}
		return ids
	}

	var experts, novices []SubjectID
	for _, h := range headers {
		switch {
		case r.ExpertPrefix != "" && strings.HasPrefix(h, r.ExpertPrefix):
			experts = append(experts, SubjectID(h))
		case r.NovicePrefix != "" && strings.HasPrefix(h, r.NovicePrefix):
			novices = append(novices, SubjectID(h))
		}
	}
	return append(experts, novices...)
}
