package mapping

import "errors"

var (
	// ErrInvalid covers unreadable or malformed mapping files, including
	// data rows with fewer than two columns.
	ErrInvalid = errors.New("mapping file is invalid")

	// ErrEmpty is returned when the file parses but contains no data rows.
	ErrEmpty = errors.New("mapping file has no data rows")
)

// Entry is one original-name -> target-name pair as loaded from the CSV.
type Entry struct {
	OriginalName string `json:"original_name"`
	TargetName   string `json:"target_name"`
	Row          int    `json:"row"`
}

// Duplicate records a key that appeared more than once. The later entry
// wins; the shadowed target is kept so callers can surface the ambiguity.
type Duplicate struct {
	Key            string `json:"key"`
	Row            int    `json:"row"`
	PreviousTarget string `json:"previous_target"`
	Target         string `json:"target"`
}

// Mapping is the loaded original-name -> target-name dictionary.
// Lookups are byte-exact; no case folding is applied.
type Mapping struct {
	targets    map[string]string
	order      []string
	rows       map[string]int
	duplicates []Duplicate
}

func newMapping() *Mapping {
	return &Mapping{
		targets: map[string]string{},
		rows:    map[string]int{},
	}
}

func (m *Mapping) add(key string, target string, row int) {
	if previous, exists := m.targets[key]; exists {
		m.duplicates = append(m.duplicates, Duplicate{
			Key:            key,
			Row:            row,
			PreviousTarget: previous,
			Target:         target,
		})
	} else {
		m.order = append(m.order, key)
	}

	m.targets[key] = target
	m.rows[key] = row
}

// Lookup returns the target name for the given filename, if mapped.
func (m *Mapping) Lookup(name string) (string, bool) {
	target, ok := m.targets[name]
	return target, ok
}

// Len reports the number of distinct keys.
func (m *Mapping) Len() int {
	return len(m.targets)
}

// Entries returns the effective pairs in first-seen file order, with
// last-write-wins values already applied.
func (m *Mapping) Entries() []Entry {
	entries := make([]Entry, 0, len(m.order))
	for _, key := range m.order {
		entries = append(entries, Entry{
			OriginalName: key,
			TargetName:   m.targets[key],
			Row:          m.rows[key],
		})
	}

	return entries
}

// Duplicates returns the shadowed entries, in file order.
func (m *Mapping) Duplicates() []Duplicate {
	return m.duplicates
}
