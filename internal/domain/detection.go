package domain

// ProductInput is the title+description variant of a detection input.
type ProductInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DetectionResult is the outcome of one detection call.
type DetectionResult struct {
	Attributes   *Attributes
	HSValidation *HSValidation
	Cache        bool  // served from the result cache
	TimeMS       int64 // wall-clock cost, 0 for pure cache hits
	Model        string
}

// BatchItem holds one slot of a batch result: either attributes or the
// structured error of that item's model call. Per-item errors never fail
// the batch as a whole.
type BatchItem struct {
	Attributes *Attributes
	Cache      bool
	Err        error
}

// BatchResult is an ordered batch outcome. Items[i] always corresponds to
// input i regardless of model-call completion order.
type BatchResult struct {
	Items     []BatchItem
	Total     int
	CacheHits int
	AICalls   int
	TimeMS    int64
}
