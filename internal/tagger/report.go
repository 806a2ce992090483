package tagger

// Status classifies the outcome of one document's reconciliation.
type Status string

const (
	StatusTagged   Status = "tagged"
	StatusStripped Status = "stripped"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Item is the per-document result collected during a bulk pass.
type Item struct {
	Path   string `json:"path"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report aggregates per-document results of a bulk operation. Failures are
// carried alongside successes; a bulk pass never aborts on one document.
type Report struct {
	Items   []Item `json:"items"`
	Changed int    `json:"changed"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

func (r *Report) add(it Item) {
	r.Items = append(r.Items, it)
	switch it.Status {
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	default:
		r.Changed++
	}
}
