package entities

import "strings"

// CallResults is the conductor's working aggregate for one call
type CallResults struct {
	Questions         []Question          `json:"questions_asked"`
	Responses         []ResponseRecord    `json:"responses_received"`
	Processed         []ProcessedResponse `json:"processed_responses"`
	MissingDevelopers []string            `json:"missing_developers"`
	Blockers          []Blocker           `json:"blockers"`
	Delays            []Delay             `json:"delays"`
}

// NewCallResults returns an empty aggregate with non-nil slices
func NewCallResults() *CallResults {
	return &CallResults{
		Questions:         []Question{},
		Responses:         []ResponseRecord{},
		Processed:         []ProcessedResponse{},
		MissingDevelopers: []string{},
		Blockers:          []Blocker{},
		Delays:            []Delay{},
	}
}

func (r *CallResults) AddQuestion(q Question) {
	r.Questions = append(r.Questions, q)
}

// AddProcessed appends a response with everything derived from it
func (r *CallResults) AddProcessed(p ProcessedResponse) {
	r.Responses = append(r.Responses, p.Response)
	r.Processed = append(r.Processed, p)
	if p.Blocker != nil {
		r.Blockers = append(r.Blockers, *p.Blocker)
	}
	if p.Delay != nil {
		r.Delays = append(r.Delays, *p.Delay)
	}
}

// AddMissing records a participant as missing; repeated calls are no-ops
func (r *CallResults) AddMissing(name string) {
	for _, m := range r.MissingDevelopers {
		if strings.EqualFold(m, name) {
			return
		}
	}
	r.MissingDevelopers = append(r.MissingDevelopers, name)
}

// WasMissing reports whether the participant was recorded missing at any
// point of the call, even if they answered other questions
func (r *CallResults) WasMissing(name string) bool {
	for _, m := range r.MissingDevelopers {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// Participants returns the distinct names that responded, in first-seen order
func (r *CallResults) Participants() []string {
	var out []string
	for _, resp := range r.Responses {
		out = appendUnique(out, resp.Participant)
	}
	return out
}

// Snapshot returns a copy detached from further mutation
func (r *CallResults) Snapshot() CallResults {
	return CallResults{
		Questions:         append([]Question{}, r.Questions...),
		Responses:         append([]ResponseRecord{}, r.Responses...),
		Processed:         append([]ProcessedResponse{}, r.Processed...),
		MissingDevelopers: append([]string{}, r.MissingDevelopers...),
		Blockers:          append([]Blocker{}, r.Blockers...),
		Delays:            append([]Delay{}, r.Delays...),
	}
}

func appendUnique(list []string, name string) []string {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return list
		}
	}
	return append(list, name)
}

// Dedupe removes case-insensitive duplicates, keeping the first spelling
func Dedupe(names []string) []string {
	out := []string{}
	for _, n := range names {
		out = appendUnique(out, n)
	}
	return out
}
