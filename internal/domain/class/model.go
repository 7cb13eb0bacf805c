package class

// Class is a scheduled group session at a branch.
type Class struct {
	ID         string
	Branch     string
	Name       string
	Instructor string
	ClassDate  string // YYYY-MM-DD
	StartTime  string // HH:MM
}
