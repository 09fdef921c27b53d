package model

type ReportWarning struct {
	Plugin string `json:"plugin"`
	Kind   string `json:"kind"`
	Short  string `json:"short"`
	Full   string `json:"full"`
}

type CheckReport struct {
	Count    int             `json:"count"`
	Warnings []ReportWarning `json:"warnings"`
}

type LookupOutput struct {
	Plugin string `json:"plugin"`
	Found  bool   `json:"found"`
	Record any    `json:"record,omitempty"`
}

type EvalOutput struct {
	Condition string `json:"condition"`
	Plugin    string `json:"plugin,omitempty"`
	Result    bool   `json:"result"`
}

type UpdateEntry struct {
	Location string `json:"location"`
	Path     string `json:"path"`
	Size     int    `json:"size"`
}

type UpdateReport struct {
	Count   int           `json:"count"`
	Updated []UpdateEntry `json:"updated"`
}
