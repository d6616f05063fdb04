package scoring

// ProspectListFilter represents query options for the prospect list
type ProspectListFilter struct {
	Priority string `form:"priority" binding:"omitempty,oneof=High Medium Low"`
	MinScore int    `form:"min_score" binding:"omitempty,min=0,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SweepResult reports a scoring sweep
type SweepResult struct {
	Found    int `json:"found"`
	Enqueued int `json:"enqueued"`
	Failed   int `json:"failed"`
}
