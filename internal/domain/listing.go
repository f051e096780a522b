package domain

// ListedTest is a single test of an assembled root suite
type ListedTest struct {
	ID              string   `json:"id"`
	Project         string   `json:"project"`
	File            string   `json:"file"`
	Line            int      `json:"line"`
	Column          int      `json:"column"`
	TitlePath       []string `json:"title_path"`
	RepeatEachIndex int      `json:"repeat_each_index"`
	Only            bool     `json:"only,omitempty"`
	Annotations     []string `json:"annotations,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// ListingMeta contains metadata about an assembled root suite
type ListingMeta struct {
	Projects  int    `json:"projects"`
	Files     int    `json:"files"`
	Tests     int    `json:"tests"`
	Errors    int    `json:"errors"`
	Shard     string `json:"shard,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ListingOutput is the complete output structure for a stored listing
type ListingOutput struct {
	Meta   ListingMeta  `json:"meta"`
	Tests  []ListedTest `json:"tests"`
	Errors []TestError  `json:"errors"`
}
