package usage

// Record is one day's model-call accounting for one user and backend.
// Supplemental bookkeeping: the pipeline never gates on it.
type Record struct {
	UserID          string `json:"-"`
	Backend         string `json:"backend"`
	Day             string `json:"day"`
	Calls           int    `json:"calls"`
	Failures        int    `json:"failures"`
	PromptChars     int64  `json:"promptChars"`
	CompletionChars int64  `json:"completionChars"`
}

// Delta is one call's contribution to a Record.
type Delta struct {
	Calls           int
	Failures        int
	PromptChars     int64
	CompletionChars int64
}
