package entity

// Stage names one of the three feature producers.
type Stage string

const (
	StageLexical    Stage = "lexical"
	StageReputation Stage = "reputation"
	StageBehavioral Stage = "behavioral"
)

// Features is one URL's row as emitted by an extractor. Values are ints, floats, bools
// or whatever a remote service returned; the aligner coerces them.
type Features map[string]any

// StageRecord keys feature rows by normalized URL and remembers insertion order.
type StageRecord struct {
	order []string
	rows  map[string]Features
}

// NewStageRecord returns an empty record with room for n rows.
func NewStageRecord(n int) *StageRecord {
	return &StageRecord{
		order: make([]string, 0, n),
		rows:  make(map[string]Features, n),
	}
}

// Set stores the row for url, replacing any earlier row without changing its position.
func (r *StageRecord) Set(url string, row Features) {
	if _, ok := r.rows[url]; !ok {
		r.order = append(r.order, url)
	}
	r.rows[url] = row
}

// Get returns the row for url.
func (r *StageRecord) Get(url string) (Features, bool) {
	if r == nil {
		return nil, false
	}
	row, ok := r.rows[url]
	return row, ok
}

// Has reports whether url has a row.
func (r *StageRecord) Has(url string) bool {
	_, ok := r.Get(url)
	return ok
}

// URLs returns the keys in insertion order.
func (r *StageRecord) URLs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len is the number of rows.
func (r *StageRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// KeyOnlyRecord builds the stub used when a stage is degraded: every URL present, no columns.
func KeyOnlyRecord(urls []string) *StageRecord {
	rec := NewStageRecord(len(urls))
	for _, u := range urls {
		rec.Set(u, Features{})
	}
	return rec
}

// StageOutputs is what the orchestrator hands to the aligner.
type StageOutputs struct {
	Lexical    *StageRecord
	Reputation *StageRecord
	Behavioral *StageRecord

	// BehavioralDegraded is set when Behavioral is a key-only stub.
	BehavioralDegraded bool
}

// Matrix is the manifest-ordered numeric table the classifier scores.
type Matrix struct {
	URLs    []string
	Columns []string
	Rows    [][]float64
}

// Len is the number of rows.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// AlignReport describes what the aligner had to reconcile.
type AlignReport struct {
	Joined         int
	Dropped        int
	MissingColumns []string
	ExtraColumns   []string
	CoercedValues  int
}
