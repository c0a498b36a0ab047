package dns

// Zone is one owner-tagged hosted zone
type Zone struct {
	Name  string `json:"name" yaml:"name"`
	ID    string `json:"id" yaml:"id"`
	Owner string `json:"owner" yaml:"owner"`
}

// Zones is a list result printable as a table
type Zones []Zone

func (l Zones) Len() int { return len(l) }

func (l Zones) Headers() []string {
	return []string{"Zone Name", "Zone ID", "Owner"}
}

func (l Zones) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, z := range l {
		rows = append(rows, []string{z.Name, z.ID, z.Owner})
	}
	return rows
}
