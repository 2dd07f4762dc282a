package book

// Consensus captures the vote tally for a pending book.
type Consensus struct {
	// MemberCount is the club's membership size at evaluation time.
	MemberCount int
	// VoteCount is the number of distinct members who voted.
	VoteCount int
	// VetoCount is the number of veto votes among them.
	VetoCount int
}

// Evaluate resolves a tally into the book's next status.
//
// The book stays pending until every member has a ballot on record. Once
// the last ballot lands, any veto rejects the book; all approvals approve
// it. A zero-member club never resolves, so a club cannot vacuously
// approve its own suggestion.
func (c Consensus) Evaluate() (Status, bool) {
	if c.MemberCount <= 0 || c.VoteCount < c.MemberCount {
		return StatusUnspecified, false
	}
	if c.VetoCount > 0 {
		return StatusRejected, true
	}
	return StatusApproved, true
}
