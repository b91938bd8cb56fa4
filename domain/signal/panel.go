package signal

// Panel holds every included subject padded to a common length.
type Panel struct {
	Time     []int
	Subjects []SubjectID // output order
	Series   map[SubjectID][]float64
}

// Len returns the padded length
func (p *Panel) Len() int { return len(p.Time) }

// Long flattens the panel into one record per (subject, time), subject-major.
func (p *Panel) Long(roster Roster) []Record {
	records := make([]Record, 0, len(p.Subjects)*len(p.Time))
	for _, subject := range p.Subjects {
		group := roster.GroupOf(subject)
		values := p.Series[subject]
		for i, t := range p.Time {
			records = append(records, Record{
				Time:    t,
				Subject: subject,
				Group:   group,
				Value:   values[i],
			})
		}
	}
	return records
}

// GroupRecords splits long records by subject, preserving first-seen order.
func GroupRecords(records []Record) ([]SubjectID, map[SubjectID][]int) {
	var order []SubjectID
	index := make(map[SubjectID][]int)
	for i, r := range records {
		if _, ok := index[r.Subject]; !ok {
			order = append(order, r.Subject)
		}
		index[r.Subject] = append(index[r.Subject], i)
	}
	return order, index
}
