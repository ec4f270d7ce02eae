package transport

// TaskRequest carries the caller-editable fields of a new task.
type TaskRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
	Notes    string `json:"notes"`
}

// UpdateTaskRequest uses pointers so absent fields are distinguishable from
// explicit empty values and leave the stored task untouched.
type UpdateTaskRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Priority *string `json:"priority"`
	DueDate  *string `json:"dueDate"`
	Notes    *string `json:"notes"`
}

// NoteRequest carries a calendar note payload. Date may come from either the
// body or the URL path; the path wins when both are set.
type NoteRequest struct {
	Date    string   `json:"date"`
	Checked bool     `json:"checked"`
	Notes   string   `json:"notes"`
	Tasks   []string `json:"tasks"`
}
